package server

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"skillhive/internal/models"
	"skillhive/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "healthy", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "disabled", checks["redis"])
	assert.Equal(t, "disabled", checks["database"])
	assert.Equal(t, false, body["ai"])

	resp = ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name           string
		path           string
		body           any
		expectedStatus int
	}{
		{
			name:           "Signup",
			path:           "/api/auth/signup",
			body:           map[string]string{"name": "Nia", "email": "nia@example.com", "password": "secret123"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Duplicate email",
			path:           "/api/auth/signup",
			body:           map[string]string{"name": "Priya", "email": "PRIYA@skillhive.dev", "password": "secret123"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "Weak password",
			path:           "/api/auth/signup",
			body:           map[string]string{"name": "Nia", "email": "nia2@example.com", "password": "short"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Login",
			path:           "/api/auth/login",
			body:           map[string]string{"email": "priya@skillhive.dev", "password": "password123"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Wrong password",
			path:           "/api/auth/login",
			body:           map[string]string{"email": "priya@skillhive.dev", "password": "nope12345"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing fields",
			path:           "/api/auth/login",
			body:           map[string]string{"email": ""},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.do(t, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestSignupTokenAuthorizesProfile(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/auth/signup", "",
		map[string]string{"name": "Nia", "email": "nia@example.com", "password": "secret123"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	auth := decode[AuthResponse](t, resp)
	require.NotEmpty(t, auth.Token)
	assert.Equal(t, models.StartingCredits, auth.User.Credits)
	assert.Equal(t, []string{"b1"}, auth.User.Badges)

	resp = ts.do(t, http.MethodGet, "/api/users/me", auth.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[models.User](t, resp)
	assert.Equal(t, auth.User.ID, me.ID)
	assert.Equal(t, "nia@example.com", me.Email)
}

func TestProtectedAndAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	member := ts.token(t, "2", models.RoleUser)
	admin := ts.token(t, "1", models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/users/me", "", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodGet, "/api/users/me", "garbage", nil).StatusCode)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/badges", "", nil).StatusCode)

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/admin/reports", member, nil).StatusCode)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/admin/reports", admin, nil).StatusCode)

	resp := ts.do(t, http.MethodPut, "/api/admin/users/5", admin, map[string]any{"credits": 999})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 999, decode[models.User](t, resp).Credits)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodDelete, "/api/admin/users/1", admin, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/admin/users/12", admin, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/users/12", member, nil).StatusCode)
}

func TestMatchLifecycle(t *testing.T) {
	ts := newTestServer(t)
	priya := ts.token(t, "2", models.RoleUser)
	hana := ts.token(t, "4", models.RoleUser)
	outsider := ts.token(t, "7", models.RoleUser)

	resp := ts.do(t, http.MethodPost, "/api/matches", priya,
		map[string]string{"user1Id": "9", "user2Id": "4", "skillOfferedId": "s2", "skillWantedId": "s5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	m := decode[models.Match](t, resp)
	assert.Equal(t, "2", m.User1ID, "caller is always the initiator")
	assert.Equal(t, models.MatchPending, m.Status)

	resp = ts.do(t, http.MethodGet, "/api/notifications", hana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	notes := decode[[]models.Notification](t, resp)
	require.NotEmpty(t, notes)
	assert.Equal(t, service.MatchRequestMessage, notes[0].Message)

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/matches/"+m.ID, outsider, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/api/matches/"+m.ID+"/accept", outsider, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/api/matches/"+m.ID+"/accept", priya, nil).StatusCode,
		"the initiator cannot accept their own request")
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/matches/"+m.ID+"/complete", priya, nil).StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/matches/"+m.ID+"/accept", hana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.MatchAccepted, decode[models.Match](t, resp).Status)

	at := time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)
	resp = ts.do(t, http.MethodPost, "/api/matches/"+m.ID+"/schedule", priya, map[string]any{"time": at})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	scheduled := decode[models.Match](t, resp)
	require.NotNil(t, scheduled.MeetLink)
	require.NotNil(t, scheduled.ScheduledTime)
	assert.True(t, at.Equal(*scheduled.ScheduledTime))

	resp = ts.do(t, http.MethodGet, "/api/matches/"+m.ID+"/messages/last", hana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.SystemSenderID, decode[models.Message](t, resp).SenderID)

	resp = ts.do(t, http.MethodPost, "/api/matches/"+m.ID+"/complete", priya, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.SessionCompleted, decode[models.Session](t, resp).Status)
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/matches/"+m.ID+"/complete", priya, nil).StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/sessions", hana, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, decode[[]models.Session](t, resp))

	resp = ts.do(t, http.MethodPut, "/api/matches/"+m.ID, priya, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMessagesAndTyping(t *testing.T) {
	ts := newTestServer(t)
	priya := ts.token(t, "2", models.RoleUser)
	mateo := ts.token(t, "3", models.RoleUser)
	samuel := ts.token(t, "5", models.RoleUser)

	resp := ts.do(t, http.MethodPost, "/api/matches/m1/messages", priya, map[string]string{"text": "  hola  "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "hola", decode[models.Message](t, resp).Text)

	assert.Equal(t, http.StatusForbidden,
		ts.do(t, http.MethodPost, "/api/matches/m1/messages", samuel, map[string]string{"text": "hi"}).StatusCode)
	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, "/api/matches/m1/messages", priya, map[string]string{"text": "   "}).StatusCode)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodGet, "/api/matches/m2/messages/last", samuel, nil).StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/matches/m1/read", mateo, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, decode[map[string]any](t, resp)["updated"])

	assert.Equal(t, http.StatusNoContent,
		ts.do(t, http.MethodPut, "/api/matches/m1/typing", priya, map[string]bool{"typing": true}).StatusCode)
	resp = ts.do(t, http.MethodGet, "/api/matches/m1/typing", mateo, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	typing := decode[map[string]any](t, resp)
	assert.Equal(t, "2", typing["userId"])
	assert.Equal(t, true, typing["typing"])
}

func TestBlockedSenderIsRejected(t *testing.T) {
	ts := newTestServer(t)
	priya := ts.token(t, "2", models.RoleUser)
	mateo := ts.token(t, "3", models.RoleUser)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, "/api/users/2/block", mateo, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden,
		ts.do(t, http.MethodPost, "/api/matches/m1/messages", priya, map[string]string{"text": "hi"}).StatusCode)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, "/api/users/2/block", mateo, nil).StatusCode)
	assert.Equal(t, http.StatusCreated,
		ts.do(t, http.MethodPost, "/api/matches/m1/messages", priya, map[string]string{"text": "hi"}).StatusCode)
}

func TestTaskCompletion(t *testing.T) {
	ts := newTestServer(t)
	mateo := ts.token(t, "3", models.RoleUser)
	priya := ts.token(t, "2", models.RoleUser)

	before, err := ts.repos.Users.GetByID(context.Background(), "3")
	require.NoError(t, err)

	resp := ts.do(t, http.MethodPost, "/api/tasks/t1/complete", mateo, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	done := decode[service.CompletedTask](t, resp)
	assert.Equal(t, models.TaskCompleted, done.Task.Status)
	assert.Equal(t, before.Credits+10, done.Credits)

	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, "/api/tasks/t1/complete", mateo, nil).StatusCode)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPost, "/api/tasks/t2/complete", priya, nil).StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/tasks", mateo, map[string]string{"title": "Read a chapter", "difficulty": "Hard"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Task](t, resp)
	assert.Equal(t, "3", created.UserID)
	assert.Equal(t, 50, created.CreditsReward)
}

func TestSkillsAndReports(t *testing.T) {
	ts := newTestServer(t)
	mateo := ts.token(t, "3", models.RoleUser)
	priya := ts.token(t, "2", models.RoleUser)
	admin := ts.token(t, "1", models.RoleAdmin)

	resp := ts.do(t, http.MethodPost, "/api/skills", mateo,
		map[string]any{"name": "Chess", "category": "Games", "ownerId": "2", "level": "Advanced"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	skill := decode[models.Skill](t, resp)
	assert.Equal(t, "3", skill.OwnerID, "members cannot list skills for others")

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodDelete, "/api/skills/"+skill.ID, priya, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/skills/"+skill.ID, mateo, nil).StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/admin/skills/s3/verify", admin, map[string]string{"userId": "5"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decode[map[string]any](t, resp)["verified"])

	resp = ts.do(t, http.MethodPost, "/api/reports", priya, map[string]string{"reportedId": "3", "reason": "spam"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	report := decode[models.Report](t, resp)
	assert.Equal(t, "2", report.ReporterID)

	assert.Equal(t, http.StatusBadRequest,
		ts.do(t, http.MethodPost, "/api/admin/reports/"+report.ID+"/resolve", admin, map[string]string{"status": "pending"}).StatusCode)
	assert.Equal(t, http.StatusNoContent,
		ts.do(t, http.MethodPost, "/api/admin/reports/"+report.ID+"/resolve", admin, map[string]string{"status": "resolved"}).StatusCode)
}

func TestNotificationReadIsScopedToRecipient(t *testing.T) {
	ts := newTestServer(t)
	priya := ts.token(t, "2", models.RoleUser)
	hana := ts.token(t, "4", models.RoleUser)

	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/notifications/n1/read", priya, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodPost, "/api/notifications/n1/read", hana, nil).StatusCode)

	list, err := ts.repos.Notifications.ListForUser(context.Background(), "4")
	require.NoError(t, err)
	for _, n := range list {
		if n.ID == "n1" {
			assert.True(t, n.Read)
		}
	}
}

func TestFeedHandlers(t *testing.T) {
	ts := newTestServer(t)
	priya := ts.token(t, "2", models.RoleUser)

	resp := ts.do(t, http.MethodPost, "/api/posts", priya,
		map[string]any{"title": "Best way to learn Go?", "content": "Looking for tips", "type": "question"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	post := decode[models.Post](t, resp)

	resp = ts.do(t, http.MethodPost, "/api/posts/"+post.ID+"/like", priya, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"2"}, decode[models.Post](t, resp).Likes)

	resp = ts.do(t, http.MethodPost, "/api/posts/"+post.ID+"/comments", priya, map[string]string{"text": "Tour of Go"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, decode[models.Post](t, resp).Comments, 1)

	resp = ts.do(t, http.MethodGet, "/api/posts", priya, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, post.ID, decode[[]models.Post](t, resp)[0].ID)
}

func TestAIEndpointsUnavailableWithoutModel(t *testing.T) {
	ts := newTestServer(t)
	priya := ts.token(t, "2", models.RoleUser)

	for _, path := range []string{"/api/ai/recommendations", "/api/ai/discoveries", "/api/skills/s2/quiz"} {
		resp := ts.do(t, http.MethodGet, path, priya, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
	resp := ts.do(t, http.MethodPost, "/api/posts/p1/ai-reply", priya, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Equal(t, models.CodeUnavailable, body.Code)
}

func TestAIFeatureFlagOff(t *testing.T) {
	ts := newTestServer(t, func(o *testOptions) {
		o.model = stubModel{generate: func(string) (string, error) { return "{}", nil }}
		o.flags = "ai_assistant=off"
	})
	priya := ts.token(t, "2", models.RoleUser)

	resp := ts.do(t, http.MethodPost, "/api/ai/chat", priya, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/feature-flags", priya, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	flags := decode[map[string]map[string]any](t, resp)
	assert.Equal(t, false, flags["evaluated"]["ai_assistant"])
	assert.Equal(t, true, flags["evaluated"]["whiteboard"])
}

func TestGuideChat(t *testing.T) {
	ts := newTestServer(t, func(o *testOptions) {
		o.model = stubModel{generate: func(string) (string, error) { return "", errors.New("unused") }}
	})
	priya := ts.token(t, "2", models.RoleUser)

	resp := ts.do(t, http.MethodPost, "/api/ai/chat", priya, map[string]string{"message": "who can teach me guitar?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	chat := decode[ChatResponse](t, resp)
	assert.NotEmpty(t, chat.SessionID)
	assert.Equal(t, "echo: who can teach me guitar?", chat.Reply)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/ai/chat/"+chat.SessionID, priya, nil).StatusCode)
}

func TestSkillQuizVerification(t *testing.T) {
	ts := newTestServer(t, func(o *testOptions) {
		o.model = stubModel{generate: func(string) (string, error) { return quizJSON(1), nil }}
	})
	mateo := ts.token(t, "3", models.RoleUser)

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPost, "/api/skills/s4/quiz", mateo, map[string][]int{"answers": {1, 1, 1, 1, 1}}).StatusCode)

	resp := ts.do(t, http.MethodGet, "/api/skills/s4/quiz", mateo, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	quiz := decode[map[string]any](t, resp)
	questions := quiz["questions"].([]any)
	require.Len(t, questions, 5)
	assert.NotContains(t, questions[0].(map[string]any), "correctIndex")

	resp = ts.do(t, http.MethodPost, "/api/skills/s4/quiz", mateo, map[string][]int{"answers": {1, 1, 1, 1, 0}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[service.QuizResult](t, resp)
	assert.Equal(t, 4, res.Score)
	assert.True(t, res.Passed)
	assert.True(t, res.Verified)

	resp = ts.do(t, http.MethodGet, "/api/users/me", mateo, nil)
	me := decode[models.User](t, resp)
	assert.Contains(t, me.VerifiedSkills, "s4")
	assert.Contains(t, me.Badges, "b3")

	assert.Equal(t, http.StatusNotFound,
		ts.do(t, http.MethodPost, "/api/skills/s4/quiz", mateo, map[string][]int{"answers": {1, 1, 1, 1, 1}}).StatusCode,
		"a quiz is graded once")
}

func TestWhiteboardFlagAndParties(t *testing.T) {
	ts := newTestServer(t)
	priya := ts.token(t, "2", models.RoleUser)
	samuel := ts.token(t, "5", models.RoleUser)

	items := map[string]any{"items": []map[string]any{{"type": "line", "points": []int{0, 0, 10, 10}}}}
	resp := ts.do(t, http.MethodPut, "/api/matches/m1/whiteboard", priya, items)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/matches/m1/whiteboard", priya, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[models.Whiteboard](t, resp).Items, 1)

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodGet, "/api/matches/m1/whiteboard", samuel, nil).StatusCode)

	off := newTestServer(t, func(o *testOptions) { o.flags = "whiteboard=off" })
	assert.Equal(t, http.StatusForbidden,
		off.do(t, http.MethodGet, "/api/matches/m1/whiteboard", off.token(t, "2", models.RoleUser), nil).StatusCode)
}
