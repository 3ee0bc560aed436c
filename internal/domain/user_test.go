package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"alice@example.com", "alice@example.com"},
		{"Alice@Example.COM", "Alice@example.com"},
		{"  bob@EXAMPLE.org ", "bob@example.org"},
		{"no-at-sign", "no-at-sign"},
		{"odd@name@Host.IO", "odd@name@host.io"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeEmail(tt.input))
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	tests := []struct {
		name     string
		user     User
		expected bool
	}{
		{"regular user", User{}, false},
		{"staff", User{IsStaff: true}, true},
		{"superuser", User{IsSuperuser: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.user.IsAdmin())
		})
	}
}

func TestPrincipal_Is(t *testing.T) {
	assert.False(t, Anonymous().Is(0), "anonymous is nobody, not user 0")
	assert.True(t, AuthenticatedAs(7).Is(7))
	assert.False(t, AuthenticatedAs(7).Is(8))
}

func TestRecipe_SetLabels(t *testing.T) {
	r := &Recipe{}

	r.SetLabels(LabelTag, []Label{{ID: 1, Name: "Spicy"}})
	r.SetLabels(LabelIngredient, nil)

	assert.Len(t, r.Labels(LabelTag), 1)
	assert.NotNil(t, r.Ingredients, "nil sets are normalized to empty")
	assert.Empty(t, r.Labels(LabelIngredient))
}

func TestLabelKind_Valid(t *testing.T) {
	assert.True(t, LabelTag.Valid())
	assert.True(t, LabelIngredient.Valid())
	assert.False(t, LabelKind("genre").Valid())
}
