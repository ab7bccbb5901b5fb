package validation

import (
	"strings"
	"testing"

	"skillhive/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string   `json:"name" validate:"notblank,max=80"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,pwd"`
	Level    string   `json:"level" validate:"omitempty,oneof=Beginner Expert"`
	Tags     []string `json:"tags" validate:"max=2"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	ok := signup{Name: "Maya", Email: "maya@example.com", Password: "password123"}
	assert.NoError(t, Struct(ok))

	bad := signup{Name: "  ", Email: "nope", Password: "short", Level: "Guru", Tags: []string{"a", "b", "c"}}
	err := Struct(bad)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	msg := err.Error()
	for _, want := range []string{
		"email must be a valid email",
		"level must be one of: Beginner, Expert",
		"name is required",
		"password must be 8 to 128 characters long",
		"tags must contain at most 2 items",
	} {
		assert.Contains(t, msg, want)
	}
	assert.Less(t, strings.Index(msg, "email"), strings.Index(msg, "tags"), "fields are reported in order")
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "password123", false},
		{"Exactly Min Length", "abcdefg1", false},
		{"Too Short", "abc1", true},
		{"Too Long", strings.Repeat("a", 128) + "1", true},
		{"No Digit", "passwordonly", true},
		{"No Letter", "1234567890", true},
		{"Unicode Letters", "Ångström12", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
