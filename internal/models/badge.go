package models

// BadgeCategory groups badges in the catalog.
type BadgeCategory string

const (
	BadgeAchievement  BadgeCategory = "achievement"
	BadgeAppreciation BadgeCategory = "appreciation"
	BadgeTrust        BadgeCategory = "trust"
)

// Catalog badge ids.
const (
	BadgeNewcomer       = "b1"
	BadgeTaskMaster     = "b2"
	BadgeVerifiedExpert = "b3"
	BadgeMentor         = "b4"
)

// TaskMasterThreshold is the number of completed tasks that earns BadgeTaskMaster.
const TaskMasterThreshold = 5

// Badge is a static achievement marker referenced by id from User.Badges.
type Badge struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Icon        string        `json:"icon" yaml:"icon"`
	Color       string        `json:"color" yaml:"color"`
	Category    BadgeCategory `json:"category" yaml:"category"`
}
