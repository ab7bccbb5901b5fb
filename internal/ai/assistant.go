// Package ai wraps the Gemini models behind the assistant features: match and
// skill recommendations, learning roadmaps, verification quizzes, feed replies
// and the chat guide.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

const (
	// GuideInstruction is the system prompt of the chat guide.
	GuideInstruction = "You are the friendly SkillHive guide. Help users find partners. Keep answers under 2 sentences."
	// PostReplyFallback is returned when a feed reply cannot be generated.
	PostReplyFallback = "Processing too many requests. Try again shortly!"
	// NoSuggestion is returned when the model answers with empty text.
	NoSuggestion = "No suggestion available."

	QuizLength      = 5
	QuizOptions     = 4
	MaxDiscoveries  = 4
	maxCandidates   = 10
	maxChatSessions = 1000
	defaultTimeout  = 20 * time.Second
)

// ErrDisabled is wrapped by every call when no API key is configured.
var ErrDisabled = errors.New("ai assistant disabled")

type PeerRecommendation struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

type SkillRecommendation struct {
	SkillName string `json:"skillName"`
	Reason    string `json:"reason"`
}

// Recommendations is the answer of Recommendations. Both lists are never nil.
type Recommendations struct {
	Peers  []PeerRecommendation  `json:"peers"`
	Skills []SkillRecommendation `json:"skills"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

type RoadmapStep struct {
	Step        int        `json:"step"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"`
	Topics      []string   `json:"topics"`
	Resources   []Resource `json:"resources"`
}

type Roadmap struct {
	Skill    string        `json:"skill"`
	Overview string        `json:"overview"`
	Steps    []RoadmapStep `json:"steps"`
}

type QuizQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// Config selects the models and the per-call timeout.
type Config struct {
	Model     string
	LiteModel string
	Timeout   time.Duration
}

// Assistant runs the assistant features against a Model. A nil model disables it.
type Assistant struct {
	model Model
	cfg   Config

	mu       sync.Mutex
	sessions map[string]ChatSession
}

// NewAssistant returns an assistant. Pass a nil model to disable every feature.
func NewAssistant(model Model, cfg Config) *Assistant {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Assistant{model: model, cfg: cfg, sessions: make(map[string]ChatSession)}
}

// Enabled reports whether a model is configured.
func (a *Assistant) Enabled() bool { return a != nil && a.model != nil }

func (a *Assistant) disabled() error {
	return models.NewUnavailableError("AI assistant", ErrDisabled)
}

// call runs fn with the configured timeout, a span and the request counter.
func (a *Assistant) call(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	span, ctx := observability.NewSpan(ctx, "ai."+operation, attribute.String("ai.operation", operation))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	err := fn(ctx)
	span.SetError(err)
	observability.AIRequests.WithLabelValues(operation, observability.ResultLabel(err)).Inc()
	if err != nil {
		observability.Logger.WarnContext(ctx, "ai request failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (a *Assistant) generateJSON(ctx context.Context, model, prompt string, schema *genai.Schema, dest any) error {
	text, err := a.model.Generate(ctx, model, prompt, schema)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("empty model response")
	}
	return json.Unmarshal([]byte(text), dest)
}

// candidates returns up to ten other non-admin members.
func candidates(user *models.User, users []models.User) []models.User {
	out := make([]models.User, 0, maxCandidates)
	for _, u := range users {
		if u.ID == user.ID || u.IsAdmin() {
			continue
		}
		out = append(out, u)
		if len(out) == maxCandidates {
			break
		}
	}
	return out
}

func skillNames(skills []models.Skill, ids []string, withLevel bool) []string {
	var names []string
	for _, s := range skills {
		for _, id := range ids {
			if s.ID != id {
				continue
			}
			if withLevel {
				names = append(names, fmt.Sprintf("%s (%s)", s.Name, s.Level))
			} else {
				names = append(names, s.Name)
			}
		}
	}
	return names
}

type peerSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Offers []string `json:"offers"`
	Wants  []string `json:"wants,omitempty"`
	Rating float64  `json:"rating"`
}

// Recommendations suggests peers and skills for user. Model failures yield
// empty lists rather than an error.
func (a *Assistant) Recommendations(ctx context.Context, user *models.User, users []models.User, skills []models.Skill, tasks []models.Task) (*Recommendations, error) {
	if !a.Enabled() {
		return nil, a.disabled()
	}

	var mastered []string
	for _, t := range tasks {
		if t.Status == models.TaskCompleted {
			mastered = append(mastered, t.Title)
		}
	}
	peers := make([]peerSummary, 0)
	for _, u := range candidates(user, users) {
		peers = append(peers, peerSummary{ID: u.ID, Name: u.Name, Offers: u.SkillsOffered, Rating: u.Rating})
	}
	peersJSON, _ := json.Marshal(peers)
	prompt := fmt.Sprintf(
		"Task: Quick peer and skill matches for %s.\nContext: Goals: %s | Mastered: %s\nPeers: %s\nReturn JSON.",
		user.Name,
		strings.Join(skillNames(skills, user.SkillsWanted, true), ", "),
		strings.Join(mastered, ", "),
		peersJSON,
	)

	var parsed struct {
		Peers  []PeerRecommendation  `json:"peerRecommendations"`
		Skills []SkillRecommendation `json:"skillRecommendations"`
	}
	out := &Recommendations{Peers: []PeerRecommendation{}, Skills: []SkillRecommendation{}}
	err := a.call(ctx, "recommendations", func(ctx context.Context) error {
		return a.generateJSON(ctx, a.cfg.Model, prompt, recommendationSchema, &parsed)
	})
	if err != nil {
		return out, nil
	}
	if parsed.Peers != nil {
		out.Peers = parsed.Peers
	}
	if parsed.Skills != nil {
		out.Skills = parsed.Skills
	}
	return out, nil
}

// SynergyDiscoveries finds up to four complementary partners. Model failures
// yield an empty list.
func (a *Assistant) SynergyDiscoveries(ctx context.Context, user *models.User, users []models.User, skills []models.Skill) ([]PeerRecommendation, error) {
	if !a.Enabled() {
		return nil, a.disabled()
	}

	peers := make([]peerSummary, 0)
	for _, u := range candidates(user, users) {
		peers = append(peers, peerSummary{ID: u.ID, Name: u.Name, Offers: u.SkillsOffered, Wants: u.SkillsWanted, Rating: u.Rating})
	}
	peersJSON, _ := json.Marshal(peers)
	prompt := fmt.Sprintf(
		"Match expert: Find %d Synergy Pairs for %s.\nOffers: %s | Wants: %s\nCandidates: %s\nReturn JSON { discoveries: [{ userId, reason }] }.",
		MaxDiscoveries,
		user.Name,
		strings.Join(skillNames(skills, user.SkillsOffered, false), ", "),
		strings.Join(skillNames(skills, user.SkillsWanted, false), ", "),
		peersJSON,
	)

	var parsed struct {
		Discoveries []PeerRecommendation `json:"discoveries"`
	}
	err := a.call(ctx, "synergy", func(ctx context.Context) error {
		return a.generateJSON(ctx, a.cfg.Model, prompt, synergySchema, &parsed)
	})
	if err != nil || parsed.Discoveries == nil {
		return []PeerRecommendation{}, nil
	}
	if len(parsed.Discoveries) > MaxDiscoveries {
		parsed.Discoveries = parsed.Discoveries[:MaxDiscoveries]
	}
	return parsed.Discoveries, nil
}

// Roadmap builds a five step learning path for skill.
func (a *Assistant) Roadmap(ctx context.Context, skill string) (*Roadmap, error) {
	if !a.Enabled() {
		return nil, a.disabled()
	}
	if strings.TrimSpace(skill) == "" {
		return nil, models.NewValidationError("skill is required")
	}
	prompt := fmt.Sprintf("Quick 5-step learning path for %q. Include resources and times.", skill)

	var out Roadmap
	err := a.call(ctx, "roadmap", func(ctx context.Context) error {
		return a.generateJSON(ctx, a.cfg.Model, prompt, roadmapSchema, &out)
	})
	if err != nil {
		return nil, models.NewUnavailableError("AI roadmap", err)
	}
	return &out, nil
}

// SkillQuiz generates a verification quiz. Answers that do not have exactly
// five well formed questions are rejected.
func (a *Assistant) SkillQuiz(ctx context.Context, skill string, level models.SkillLevel) ([]QuizQuestion, error) {
	if !a.Enabled() {
		return nil, a.disabled()
	}
	prompt := fmt.Sprintf("%d-question test for %q at %q level. %d options, one correctIndex. JSON only.", QuizLength, skill, level, QuizOptions)

	var parsed struct {
		Questions []QuizQuestion `json:"questions"`
	}
	err := a.call(ctx, "quiz", func(ctx context.Context) error {
		if err := a.generateJSON(ctx, a.cfg.LiteModel, prompt, quizSchema, &parsed); err != nil {
			return err
		}
		return validateQuiz(parsed.Questions)
	})
	if err != nil {
		return nil, models.NewUnavailableError("AI quiz", err)
	}
	return parsed.Questions, nil
}

func validateQuiz(questions []QuizQuestion) error {
	if len(questions) != QuizLength {
		return fmt.Errorf("quiz has %d questions", len(questions))
	}
	for i, q := range questions {
		if len(q.Options) != QuizOptions || q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
			return fmt.Errorf("quiz question %d is malformed", i+1)
		}
	}
	return nil
}

// PostReply drafts a short expert answer to a feed post. It never fails.
func (a *Assistant) PostReply(ctx context.Context, title, content string) string {
	if !a.Enabled() {
		return PostReplyFallback
	}
	prompt := fmt.Sprintf("Expert reply to post: %s. Content: %s. Max 2 sentences.", title, content)

	var text string
	err := a.call(ctx, "post_reply", func(ctx context.Context) error {
		var err error
		text, err = a.model.Generate(ctx, a.cfg.LiteModel, prompt, nil)
		return err
	})
	if err != nil {
		return PostReplyFallback
	}
	if strings.TrimSpace(text) == "" {
		return NoSuggestion
	}
	return strings.TrimSpace(text)
}

// Chat sends message to the guide session sessionID, opening one when the id
// is empty or unknown. It returns the session id to use for the next turn.
func (a *Assistant) Chat(ctx context.Context, sessionID, message string) (string, string, error) {
	if !a.Enabled() {
		return "", "", a.disabled()
	}
	if strings.TrimSpace(message) == "" {
		return "", "", models.NewValidationError("message is required")
	}

	session, sessionID, err := a.session(ctx, sessionID)
	if err != nil {
		return "", "", models.NewUnavailableError("AI chat", err)
	}

	var reply string
	err = a.call(ctx, "chat", func(ctx context.Context) error {
		var err error
		reply, err = session.Send(ctx, message)
		return err
	})
	if err != nil {
		return sessionID, "", models.NewUnavailableError("AI chat", err)
	}
	return sessionID, reply, nil
}

// EndChat forgets a guide session and its history.
func (a *Assistant) EndChat(sessionID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, sessionID)
}

func (a *Assistant) session(ctx context.Context, id string) (ChatSession, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if s, ok := a.sessions[id]; ok && id != "" {
		return s, id, nil
	}
	if len(a.sessions) >= maxChatSessions {
		return nil, "", errors.New("too many open chat sessions")
	}
	s, err := a.model.NewChat(ctx, a.cfg.Model, GuideInstruction)
	if err != nil {
		return nil, "", err
	}
	id = uuid.NewString()
	a.sessions[id] = s
	return s, id, nil
}
