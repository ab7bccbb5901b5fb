package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skillhive/internal/ai"
	"skillhive/internal/config"
	"skillhive/internal/events"
	"skillhive/internal/models"
	"skillhive/internal/notifications"
	"skillhive/internal/repository"
	"skillhive/internal/service"
	"skillhive/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type stubModel struct {
	generate func(prompt string) (string, error)
}

func (m stubModel) Generate(_ context.Context, _, prompt string, _ *genai.Schema) (string, error) {
	return m.generate(prompt)
}

func (m stubModel) NewChat(context.Context, string, string) (ai.ChatSession, error) {
	return stubChat{}, nil
}

type stubChat struct{}

func (stubChat) Send(_ context.Context, message string) (string, error) {
	return "echo: " + message, nil
}

type testOptions struct {
	model ai.Model
	flags string
}

type testServer struct {
	srv   *Server
	repos *repository.Repositories
}

func newTestServer(t *testing.T, opts ...func(*testOptions)) *testServer {
	t.Helper()
	var o testOptions
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &config.Config{
		Env:               "test",
		Backend:           config.BackendLocal,
		JWTSecret:         testSecret,
		JWTTTLHours:       1,
		FeatureFlags:      o.flags,
		MediaUploadDir:    t.TempDir(),
		MediaPublicPrefix: "/media",
		MediaMaxUploadMB:  2,
	}
	records := store.NewRecords(store.NewMemoryKV(), events.Discard{}, store.WithReseedBelow(store.Users, 10))
	repos := repository.NewLocal(records, "password123")

	var assistant *ai.Assistant
	if o.model != nil {
		assistant = ai.NewAssistant(o.model, ai.Config{Model: "main", LiteModel: "lite"})
	}
	svc := service.New(service.Deps{
		Repos:     repos,
		Pusher:    notifications.NewNotifier(nil),
		Assistant: assistant,
		Config:    cfg,
	})

	srv := New(Deps{Config: cfg, Services: svc, Registerer: prometheus.NewRegistry()})
	return &testServer{srv: srv, repos: repos}
}

func (ts *testServer) token(t *testing.T, userID string, role models.Role) string {
	t.Helper()
	tok, err := ts.srv.Auth().IssueToken(userID, role)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.srv.App().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func quizJSON(correct int) string {
	var qs []string
	for i := 0; i < ai.QuizLength; i++ {
		qs = append(qs, fmt.Sprintf(`{"question":"Q%d","options":["a","b","c","d"],"correctIndex":%d}`, i, correct))
	}
	return `{"questions":[` + strings.Join(qs, ",") + `]}`
}
