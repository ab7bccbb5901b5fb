// Package seed provides the default dataset written into an empty record
// store and a factory for generating demo data.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"skillhive/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed dataset.yaml
var datasetYAML []byte

// Dataset is the full default dataset.
type Dataset struct {
	Badges        []models.Badge        `json:"badges"`
	Users         []models.User         `json:"users"`
	Skills        []models.Skill        `json:"skills"`
	Matches       []models.Match        `json:"matches"`
	Sessions      []models.Session      `json:"sessions"`
	Feedbacks     []models.Feedback     `json:"feedbacks"`
	Notifications []models.Notification `json:"notifications"`
	Tasks         []models.Task         `json:"tasks"`
	Reports       []models.Report       `json:"reports"`
	Posts         []models.Post         `json:"posts"`
}

// ParseDataset decodes a YAML dataset. Field names follow the JSON wire
// format, so the document is routed through encoding/json after parsing.
func ParseDataset(raw []byte) (*Dataset, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

var defaultDataset = sync.OnceValue(func() []byte {
	ds, err := ParseDataset(datasetYAML)
	if err != nil {
		panic(err)
	}
	b, err := json.Marshal(ds)
	if err != nil {
		panic(err)
	}
	return b
})

// Default returns a fresh copy of the embedded dataset. Callers may mutate it.
func Default() *Dataset {
	var ds Dataset
	if err := json.Unmarshal(defaultDataset(), &ds); err != nil {
		panic(err)
	}
	return &ds
}

func Users() []models.User                 { return Default().Users }
func Skills() []models.Skill               { return Default().Skills }
func Matches() []models.Match              { return Default().Matches }
func Sessions() []models.Session           { return Default().Sessions }
func Feedbacks() []models.Feedback         { return Default().Feedbacks }
func Notifications() []models.Notification { return Default().Notifications }
func Tasks() []models.Task                 { return Default().Tasks }
func Reports() []models.Report             { return Default().Reports }
func Posts() []models.Post                 { return Default().Posts }
func Badges() []models.Badge               { return Default().Badges }

// Messages seeds an empty chat history.
func Messages() []models.Message { return []models.Message{} }

// Credentials returns a seed function giving every default user the same
// password. Hashes are computed once, at bcrypt.MinCost, on first use.
func Credentials(password string) func() []models.Credential {
	hashes := sync.OnceValue(func() []models.Credential {
		users := Users()
		out := make([]models.Credential, 0, len(users))
		for _, u := range users {
			h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				panic(err)
			}
			out = append(out, models.Credential{UserID: u.ID, PasswordHash: string(h)})
		}
		return out
	})
	return func() []models.Credential {
		return append([]models.Credential(nil), hashes()...)
	}
}
