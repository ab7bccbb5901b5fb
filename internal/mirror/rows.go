package mirror

import (
	"time"

	"skillhive/internal/models"
)

// Row types carry the hosted schema's snake_case column names. Every
// conversion between a row and a domain model goes through the toModel and
// fromModel functions below.

type profileRow struct {
	ID             string   `gorm:"column:id;primaryKey"`
	Name           string   `gorm:"column:name"`
	Email          string   `gorm:"column:email;uniqueIndex"`
	Bio            string   `gorm:"column:bio"`
	AvatarURL      string   `gorm:"column:avatar_url"`
	SkillsOffered  []string `gorm:"column:skills_offered;serializer:json"`
	SkillsWanted   []string `gorm:"column:skills_wanted;serializer:json"`
	VerifiedSkills []string `gorm:"column:verified_skills;serializer:json"`
	Availability   string   `gorm:"column:availability"`
	Rating         float64  `gorm:"column:rating"`
	Role           string   `gorm:"column:role"`
	BlockedUsers   []string `gorm:"column:blocked_users;serializer:json"`
	Credits        int      `gorm:"column:credits"`
	Badges         []string `gorm:"column:badges;serializer:json"`
}

func (profileRow) TableName() string { return "profiles" }

func (r profileRow) toModel() models.User {
	return models.User{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Bio:            r.Bio,
		AvatarURL:      r.AvatarURL,
		SkillsOffered:  orEmpty(r.SkillsOffered),
		SkillsWanted:   orEmpty(r.SkillsWanted),
		VerifiedSkills: orEmpty(r.VerifiedSkills),
		Availability:   r.Availability,
		Rating:         r.Rating,
		Role:           models.Role(r.Role),
		BlockedUsers:   orEmpty(r.BlockedUsers),
		Credits:        r.Credits,
		Badges:         orEmpty(r.Badges),
	}
}

func profileFromModel(u *models.User) profileRow {
	return profileRow{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Bio:            u.Bio,
		AvatarURL:      u.AvatarURL,
		SkillsOffered:  orEmpty(u.SkillsOffered),
		SkillsWanted:   orEmpty(u.SkillsWanted),
		VerifiedSkills: orEmpty(u.VerifiedSkills),
		Availability:   u.Availability,
		Rating:         u.Rating,
		Role:           string(u.Role),
		BlockedUsers:   orEmpty(u.BlockedUsers),
		Credits:        u.Credits,
		Badges:         orEmpty(u.Badges),
	}
}

type credentialRow struct {
	UserID       string `gorm:"column:user_id;primaryKey"`
	PasswordHash string `gorm:"column:password_hash"`
}

func (credentialRow) TableName() string { return "credentials" }

func (r credentialRow) toModel() models.Credential {
	return models.Credential{UserID: r.UserID, PasswordHash: r.PasswordHash}
}

type skillRow struct {
	ID          string   `gorm:"column:id;primaryKey"`
	Name        string   `gorm:"column:name"`
	Category    string   `gorm:"column:category"`
	Description string   `gorm:"column:description"`
	OwnerID     string   `gorm:"column:owner_id;index"`
	Tags        []string `gorm:"column:tags;serializer:json"`
	Level       string   `gorm:"column:level"`
}

func (skillRow) TableName() string { return "skills" }

func (r skillRow) toModel() models.Skill {
	return models.Skill{
		ID:          r.ID,
		Name:        r.Name,
		Category:    r.Category,
		Description: r.Description,
		OwnerID:     r.OwnerID,
		Tags:        orEmpty(r.Tags),
		Level:       models.SkillLevel(r.Level),
	}
}

func skillFromModel(s *models.Skill) skillRow {
	return skillRow{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Description: s.Description,
		OwnerID:     s.OwnerID,
		Tags:        orEmpty(s.Tags),
		Level:       string(s.Level),
	}
}

type matchRow struct {
	ID             string     `gorm:"column:id;primaryKey"`
	User1ID        string     `gorm:"column:user1_id;index"`
	User2ID        string     `gorm:"column:user2_id;index"`
	SkillOfferedID string     `gorm:"column:skill_offered_id"`
	SkillWantedID  string     `gorm:"column:skill_wanted_id"`
	Status         string     `gorm:"column:status"`
	ScheduledTime  *time.Time `gorm:"column:scheduled_time"`
	MeetLink       *string    `gorm:"column:meet_link"`
}

func (matchRow) TableName() string { return "matches" }

func (r matchRow) toModel() models.Match {
	return models.Match{
		ID:             r.ID,
		User1ID:        r.User1ID,
		User2ID:        r.User2ID,
		SkillOfferedID: r.SkillOfferedID,
		SkillWantedID:  r.SkillWantedID,
		Status:         models.MatchStatus(r.Status),
		ScheduledTime:  r.ScheduledTime,
		MeetLink:       r.MeetLink,
	}
}

func matchFromModel(m *models.Match) matchRow {
	return matchRow{
		ID:             m.ID,
		User1ID:        m.User1ID,
		User2ID:        m.User2ID,
		SkillOfferedID: m.SkillOfferedID,
		SkillWantedID:  m.SkillWantedID,
		Status:         string(m.Status),
		ScheduledTime:  m.ScheduledTime,
		MeetLink:       m.MeetLink,
	}
}

type sessionRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	MatchID   string    `gorm:"column:match_id;index"`
	StartTime time.Time `gorm:"column:start_time"`
	EndTime   time.Time `gorm:"column:end_time"`
	Status    string    `gorm:"column:status"`
}

func (sessionRow) TableName() string { return "sessions" }

func (r sessionRow) toModel() models.Session {
	return models.Session{
		ID:        r.ID,
		MatchID:   r.MatchID,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Status:    models.SessionStatus(r.Status),
	}
}

func sessionFromModel(s *models.Session) sessionRow {
	return sessionRow{
		ID:        s.ID,
		MatchID:   s.MatchID,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Status:    string(s.Status),
	}
}

type feedbackRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	SessionID  string    `gorm:"column:session_id"`
	FromUserID string    `gorm:"column:from_user_id"`
	ToUserID   string    `gorm:"column:to_user_id;index"`
	Rating     int       `gorm:"column:rating"`
	Comment    string    `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (feedbackRow) TableName() string { return "feedbacks" }

func (r feedbackRow) toModel() models.Feedback {
	return models.Feedback{
		ID:         r.ID,
		SessionID:  r.SessionID,
		FromUserID: r.FromUserID,
		ToUserID:   r.ToUserID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

func feedbackFromModel(f *models.Feedback) feedbackRow {
	return feedbackRow{
		ID:         f.ID,
		SessionID:  f.SessionID,
		FromUserID: f.FromUserID,
		ToUserID:   f.ToUserID,
		Rating:     f.Rating,
		Comment:    f.Comment,
		CreatedAt:  f.CreatedAt,
	}
}

type messageRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	MatchID   string    `gorm:"column:match_id;index"`
	SenderID  string    `gorm:"column:sender_id"`
	Text      string    `gorm:"column:text"`
	MediaURL  string    `gorm:"column:media_url"`
	Type      string    `gorm:"column:type"`
	Timestamp time.Time `gorm:"column:timestamp"`
	Read      bool      `gorm:"column:read"`
}

func (messageRow) TableName() string { return "messages" }

func (r messageRow) toModel() models.Message {
	return models.Message{
		ID:        r.ID,
		MatchID:   r.MatchID,
		SenderID:  r.SenderID,
		Text:      r.Text,
		MediaURL:  r.MediaURL,
		Type:      models.MessageType(r.Type),
		Timestamp: r.Timestamp,
		Read:      r.Read,
	}
}

func messageFromModel(m *models.Message) messageRow {
	return messageRow{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderID:  m.SenderID,
		Text:      m.Text,
		MediaURL:  m.MediaURL,
		Type:      string(m.Type),
		Timestamp: m.Timestamp,
		Read:      m.Read,
	}
}

type notificationRow struct {
	ID        string    `gorm:"column:id;primaryKey"`
	UserID    string    `gorm:"column:user_id;index"`
	Message   string    `gorm:"column:message"`
	Type      string    `gorm:"column:type"`
	Read      bool      `gorm:"column:read"`
	CreatedAt time.Time `gorm:"column:created_at"`
	MatchID   string    `gorm:"column:match_id"`
}

func (notificationRow) TableName() string { return "notifications" }

func (r notificationRow) toModel() models.Notification {
	return models.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Message:   r.Message,
		Type:      models.NotificationType(r.Type),
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
		MatchID:   r.MatchID,
	}
}

func notificationFromModel(n *models.Notification) notificationRow {
	return notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      string(n.Type),
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		MatchID:   n.MatchID,
	}
}

type taskRow struct {
	ID            string     `gorm:"column:id;primaryKey"`
	UserID        string     `gorm:"column:user_id;index"`
	Title         string     `gorm:"column:title"`
	Description   string     `gorm:"column:description"`
	Difficulty    string     `gorm:"column:difficulty"`
	CreditsReward int        `gorm:"column:credits_reward"`
	Status        string     `gorm:"column:status"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
}

func (taskRow) TableName() string { return "tasks" }

func (r taskRow) toModel() models.Task {
	return models.Task{
		ID:            r.ID,
		UserID:        r.UserID,
		Title:         r.Title,
		Description:   r.Description,
		Difficulty:    models.Difficulty(r.Difficulty),
		CreditsReward: r.CreditsReward,
		Status:        models.TaskStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		CompletedAt:   r.CompletedAt,
	}
}

func taskFromModel(t *models.Task) taskRow {
	return taskRow{
		ID:            t.ID,
		UserID:        t.UserID,
		Title:         t.Title,
		Description:   t.Description,
		Difficulty:    string(t.Difficulty),
		CreditsReward: t.CreditsReward,
		Status:        string(t.Status),
		CreatedAt:     t.CreatedAt,
		CompletedAt:   t.CompletedAt,
	}
}

type reportRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	ReporterID  string    `gorm:"column:reporter_id"`
	ReportedID  string    `gorm:"column:reported_id"`
	Reason      string    `gorm:"column:reason"`
	Description string    `gorm:"column:description"`
	Status      string    `gorm:"column:status"`
	Timestamp   time.Time `gorm:"column:timestamp"`
}

func (reportRow) TableName() string { return "reports" }

func (r reportRow) toModel() models.Report {
	return models.Report{
		ID:          r.ID,
		ReporterID:  r.ReporterID,
		ReportedID:  r.ReportedID,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      models.ReportStatus(r.Status),
		Timestamp:   r.Timestamp,
	}
}

func reportFromModel(r *models.Report) reportRow {
	return reportRow{
		ID:          r.ID,
		ReporterID:  r.ReporterID,
		ReportedID:  r.ReportedID,
		Reason:      r.Reason,
		Description: r.Description,
		Status:      string(r.Status),
		Timestamp:   r.Timestamp,
	}
}

type postRow struct {
	ID        string           `gorm:"column:id;primaryKey"`
	UserID    string           `gorm:"column:user_id;index"`
	Title     string           `gorm:"column:title"`
	Content   string           `gorm:"column:content"`
	Tags      []string         `gorm:"column:tags;serializer:json"`
	Likes     []string         `gorm:"column:likes;serializer:json"`
	Comments  []models.Comment `gorm:"column:comments;serializer:json"`
	CreatedAt time.Time        `gorm:"column:created_at"`
	Type      string           `gorm:"column:type"`
}

func (postRow) TableName() string { return "posts" }

func (r postRow) toModel() models.Post {
	comments := r.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return models.Post{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Content:   r.Content,
		Tags:      orEmpty(r.Tags),
		Likes:     orEmpty(r.Likes),
		Comments:  comments,
		CreatedAt: r.CreatedAt,
		Type:      models.PostType(r.Type),
	}
}

func postFromModel(p *models.Post) postRow {
	comments := p.Comments
	if comments == nil {
		comments = []models.Comment{}
	}
	return postRow{
		ID:        p.ID,
		UserID:    p.UserID,
		Title:     p.Title,
		Content:   p.Content,
		Tags:      orEmpty(p.Tags),
		Likes:     orEmpty(p.Likes),
		Comments:  comments,
		CreatedAt: p.CreatedAt,
		Type:      string(p.Type),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Tables lists the row types AutoMigrate creates.
func Tables() []any {
	return []any{
		&profileRow{},
		&credentialRow{},
		&skillRow{},
		&matchRow{},
		&sessionRow{},
		&feedbackRow{},
		&messageRow{},
		&notificationRow{},
		&taskRow{},
		&reportRow{},
		&postRow{},
	}
}

// rowsToModels converts a slice of rows with their toModel method.
func rowsToModels[R interface{ toModel() M }, M any](rows []R) []M {
	out := make([]M, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toModel())
	}
	return out
}
