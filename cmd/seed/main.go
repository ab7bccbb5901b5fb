// Command seed fills the remote database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"skillhive/internal/bootstrap"
	"skillhive/internal/config"
	"skillhive/internal/mirror"
	"skillhive/internal/models"
	"skillhive/internal/seed"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of extra random users to create")
	numPosts := flag.Int("posts", 40, "Number of extra random posts to create")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated records")
	flag.Parse()

	log.Println("SkillHive database seeder")
	log.Printf("Target: built-in dataset plus %d users, %d posts\n", *numUsers, *numPosts)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Backend != config.BackendRemote {
		log.Fatalf("BACKEND=%s keeps data in the record store; set BACKEND=remote to seed a database", cfg.Backend)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Registerer: prometheus.NewRegistry()})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	data, err := buildData(cfg.SeedPassword, *randSeed, *numUsers, *numPosts)
	if err != nil {
		log.Fatalf("Failed to build seed data: %v", err)
	}
	if err := mirror.SeedDatabase(ctx, rt, data); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding is skipped when the profiles table already has rows.")
	log.Printf("All done. %d users, %d skills, %d posts.\n", len(data.Users), len(data.Skills), len(data.Posts))
	log.Printf("All seeded users have the password: %s\n", cfg.SeedPassword)
}

func buildData(password string, randSeed int64, numUsers, numPosts int) (mirror.SeedData, error) {
	data := bootstrap.DefaultSeedData(password)
	f := seed.NewFactory(randSeed)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return data, err
	}
	for range numUsers {
		u := f.User()
		s := f.Skill(u.ID)
		u.SkillsOffered = append(u.SkillsOffered, s.ID)
		data.Users = append(data.Users, u)
		data.Skills = append(data.Skills, s)
		data.Tasks = append(data.Tasks, f.Task(u.ID))
		data.Credentials = append(data.Credentials, models.Credential{UserID: u.ID, PasswordHash: string(hash)})
	}
	for i := range numPosts {
		author := data.Users[i%len(data.Users)]
		data.Posts = append(data.Posts, f.Post(author.ID))
	}
	return data, nil
}
