package models

// SkillLevel is the self-declared proficiency of a skill listing.
type SkillLevel string

const (
	LevelBeginner     SkillLevel = "Beginner"
	LevelIntermediate SkillLevel = "Intermediate"
	LevelAdvanced     SkillLevel = "Advanced"
	LevelExpert       SkillLevel = "Expert"
)

// Skill is a listing owned by one user.
type Skill struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	OwnerID     string     `json:"ownerId"`
	Tags        []string   `json:"tags"`
	Level       SkillLevel `json:"level"`
}

// RecordID implements store.Record.
func (s Skill) RecordID() string { return s.ID }
