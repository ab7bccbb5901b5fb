package seed

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"skillhive/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

var (
	skillCatalog = map[string][]string{
		"Programming": {"Go", "Rust", "SQL", "Kotlin", "Swift"},
		"Languages":   {"Italian", "Japanese", "Portuguese", "Korean"},
		"Music":       {"Piano", "Drums", "Singing", "Ukulele"},
		"Art":         {"Watercolor", "Calligraphy", "Pottery"},
		"Wellness":    {"Meditation", "Running", "Nutrition"},
		"Business":    {"Public Speaking", "Negotiation", "Bookkeeping"},
	}
	levels       = []models.SkillLevel{models.LevelBeginner, models.LevelIntermediate, models.LevelAdvanced, models.LevelExpert}
	difficulties = []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}
)

// Factory builds random domain records for demo data. It does not persist anything.
type Factory struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory creates a Factory. The same seed yields the same sequence of records
// apart from ids.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed), now: time.Now}
}

// User builds a regular member profile with starting credits.
func (f *Factory) User(overrides ...func(*models.User)) models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	id := uuid.NewString()
	u := models.User{
		ID:             id,
		Name:           first + " " + last,
		Email:          strings.ToLower(fmt.Sprintf("%s.%s.%s@example.com", first, last, id[:6])),
		Bio:            f.faker.Sentence(10),
		AvatarURL:      "https://i.pravatar.cc/150?u=" + id,
		SkillsOffered:  []string{},
		SkillsWanted:   []string{f.randomSkillName()},
		VerifiedSkills: []string{},
		Availability:   f.faker.RandomString([]string{"Weekends", "Evenings", "Mornings", "Flexible"}),
		Rating:         models.StartingRating,
		Role:           models.RoleUser,
		BlockedUsers:   []string{},
		Credits:        models.StartingCredits,
		Badges:         []string{models.BadgeNewcomer},
	}
	for _, o := range overrides {
		o(&u)
	}
	return u
}

func (f *Factory) randomSkillName() string {
	category := f.randomCategory()
	names := skillCatalog[category]
	return names[f.faker.Number(0, len(names)-1)]
}

func (f *Factory) randomCategory() string {
	categories := make([]string, 0, len(skillCatalog))
	for c := range skillCatalog {
		categories = append(categories, c)
	}
	// map order is random
	slices.Sort(categories)
	return categories[f.faker.Number(0, len(categories)-1)]
}

// Skill builds a listing owned by ownerID.
func (f *Factory) Skill(ownerID string) models.Skill {
	category := f.randomCategory()
	names := skillCatalog[category]
	name := names[f.faker.Number(0, len(names)-1)]
	return models.Skill{
		ID:          uuid.NewString(),
		Name:        name,
		Category:    category,
		Description: f.faker.Sentence(8),
		OwnerID:     ownerID,
		Tags:        []string{strings.ToLower(category), strings.ToLower(strings.ReplaceAll(name, " ", "-"))},
		Level:       levels[f.faker.Number(0, len(levels)-1)],
	}
}

// Task builds a pending task for userID with a reward matching its difficulty.
func (f *Factory) Task(userID string) models.Task {
	d := difficulties[f.faker.Number(0, len(difficulties)-1)]
	return models.Task{
		ID:            uuid.NewString(),
		UserID:        userID,
		Title:         f.faker.HipsterSentence(4),
		Description:   f.faker.Sentence(12),
		Difficulty:    d,
		CreditsReward: d.Reward(),
		Status:        models.TaskPending,
		CreatedAt:     f.recent(30),
	}
}

// Post builds a feed entry by userID.
func (f *Factory) Post(userID string) models.Post {
	postType := models.PostTip
	title := f.faker.HipsterSentence(5)
	if f.faker.Bool() {
		postType = models.PostQuestion
		title = f.faker.Question()
	}
	return models.Post{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   f.faker.Paragraph(1, 3, 12, " "),
		Tags:      []string{strings.ToLower(f.randomCategory())},
		Likes:     []string{},
		Comments:  []models.Comment{},
		CreatedAt: f.recent(14),
		Type:      postType,
	}
}

// recent returns a timestamp spread over the last maxDays days.
func (f *Factory) recent(maxDays int) time.Time {
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute
	return f.now().Add(-back).UTC()
}
