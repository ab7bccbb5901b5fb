// Package models contains data structures for the application's domain models.
package models

// Role tags a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Defaults applied to every newly registered account.
const (
	StartingCredits = 100
	StartingRating  = 5.0
)

// User represents a SkillHive member profile. Credentials are stored separately
// (see Credential) and never travel with the profile.
type User struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Bio            string   `json:"bio"`
	AvatarURL      string   `json:"avatarUrl"`
	SkillsOffered  []string `json:"skillsOffered"`
	SkillsWanted   []string `json:"skillsWanted"`
	VerifiedSkills []string `json:"verifiedSkills"`
	Availability   string   `json:"availability"`
	Rating         float64  `json:"rating"`
	Role           Role     `json:"role"`
	BlockedUsers   []string `json:"blockedUsers"`
	Credits        int      `json:"credits"`
	Badges         []string `json:"badges"`
}

// RecordID implements store.Record.
func (u User) RecordID() string { return u.ID }

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// HasBadge reports whether badgeID was already earned.
func (u *User) HasBadge(badgeID string) bool { return contains(u.Badges, badgeID) }

// HasBlocked reports whether targetID is on the user's block list.
func (u *User) HasBlocked(targetID string) bool { return contains(u.BlockedUsers, targetID) }

// Credential is the password hash for one account. It lives in its own
// collection so that profile reads never carry it.
type Credential struct {
	UserID       string `json:"userId"`
	PasswordHash string `json:"passwordHash"`
}

// RecordID implements store.Record.
func (c Credential) RecordID() string { return c.UserID }

// UserPatch lists the profile fields a member may change on their own account.
// Nil fields are left untouched.
type UserPatch struct {
	Name          *string   `json:"name" validate:"omitempty,min=1,max=120"`
	Bio           *string   `json:"bio" validate:"omitempty,max=2000"`
	Availability  *string   `json:"availability" validate:"omitempty,max=120"`
	AvatarURL     *string   `json:"avatarUrl" validate:"omitempty,max=2048"`
	SkillsOffered *[]string `json:"skillsOffered"`
	SkillsWanted  *[]string `json:"skillsWanted"`
}

// AdminUserPatch extends UserPatch with fields only admins may write.
type AdminUserPatch struct {
	UserPatch
	Role           *Role     `json:"role" validate:"omitempty,oneof=user admin"`
	Credits        *int      `json:"credits" validate:"omitempty,min=0"`
	Rating         *float64  `json:"rating" validate:"omitempty,min=0,max=5"`
	Badges         *[]string `json:"badges"`
	VerifiedSkills *[]string `json:"verifiedSkills"`
	BlockedUsers   *[]string `json:"blockedUsers"`
}

// Apply copies the set fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Availability != nil {
		u.Availability = *p.Availability
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	if p.SkillsOffered != nil {
		u.SkillsOffered = append([]string{}, (*p.SkillsOffered)...)
	}
	if p.SkillsWanted != nil {
		u.SkillsWanted = append([]string{}, (*p.SkillsWanted)...)
	}
}

// Apply copies the set fields onto u.
func (p AdminUserPatch) Apply(u *User) {
	p.UserPatch.Apply(u)
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Credits != nil {
		u.Credits = *p.Credits
	}
	if p.Rating != nil {
		u.Rating = *p.Rating
	}
	if p.Badges != nil {
		u.Badges = append([]string{}, (*p.Badges)...)
	}
	if p.VerifiedSkills != nil {
		u.VerifiedSkills = append([]string{}, (*p.VerifiedSkills)...)
	}
	if p.BlockedUsers != nil {
		u.BlockedUsers = append([]string{}, (*p.BlockedUsers)...)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// AppendUnique appends v to list unless it is already present.
// The second result reports whether list changed.
func AppendUnique(list []string, v string) ([]string, bool) {
	if contains(list, v) {
		return list, false
	}
	return append(list, v), true
}

// Remove returns list without any occurrence of v.
func Remove(list []string, v string) []string {
	out := list[:0:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}
