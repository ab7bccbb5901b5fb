// Package featureflags evaluates the FEATURE_FLAGS setting per user.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Flags the application checks.
const (
	AIAssistant = "ai_assistant"
	Whiteboard  = "whiteboard"
	MediaUpload = "media_upload"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "ai_assistant=on,whiteboard=25%,media_upload=off"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic user rollout, e.g. 25%)
//
// A flag that is not configured at all counts as enabled, so an empty
// FEATURE_FLAGS turns nothing off.
func (m *Manager) Enabled(name, userID string) bool {
	if m == nil {
		return true
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return true
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if userID == "" {
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one user, including the flags
// the application knows about but that are not configured.
func (m *Manager) Snapshot(userID string) map[string]bool {
	out := map[string]bool{
		AIAssistant: m.Enabled(AIAssistant, userID),
		Whiteboard:  m.Enabled(Whiteboard, userID),
		MediaUpload: m.Enabled(MediaUpload, userID),
	}
	if m == nil {
		return out
	}
	for name := range m.flags {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + userID))
	return int(h.Sum32() % 100)
}
