package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name  string
		in    InsertUser
		field string
	}{
		{name: "valid", in: InsertUser{Username: "alice", Password: "secret123"}},
		{name: "missing username", in: InsertUser{Password: "secret123"}, field: "username"},
		{name: "missing password", in: InsertUser{Username: "alice"}, field: "password"},
		{name: "both missing reports username first", in: InsertUser{}, field: "username"},
		{name: "no strength rules", in: InsertUser{Username: "a", Password: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUser(tt.in)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.field+" is required", verr.Message)
		})
	}
}

func TestValidateArgument(t *testing.T) {
	valid := InsertArgument{Title: "Sunk Cost", Description: "Past costs should not drive decisions", Archetype: Business}
	require.NoError(t, ValidateArgument(valid))

	for _, a := range Archetypes {
		in := valid
		in.Archetype = a
		assert.NoError(t, ValidateArgument(in), "archetype %s", a)
	}

	tests := []struct {
		name    string
		mutate  func(*InsertArgument)
		field   string
		message string
	}{
		{
			name:    "empty title",
			mutate:  func(a *InsertArgument) { a.Title = "" },
			field:   "title",
			message: "title is required",
		},
		{
			name:    "empty description",
			mutate:  func(a *InsertArgument) { a.Description = "" },
			field:   "description",
			message: "description is required",
		},
		{
			name:    "missing archetype",
			mutate:  func(a *InsertArgument) { a.Archetype = "" },
			field:   "archetype",
			message: "archetype is required",
		},
		{
			name:    "unknown archetype",
			mutate:  func(a *InsertArgument) { a.Archetype = "Philosophical" },
			field:   "archetype",
			message: "archetype must be one of: Technical, Business, Research, Educational",
		},
		{
			name:    "archetype is case sensitive",
			mutate:  func(a *InsertArgument) { a.Archetype = "business" },
			field:   "archetype",
			message: "archetype must be one of: Technical, Business, Research, Educational",
		},
		{
			name: "first failing field wins",
			mutate: func(a *InsertArgument) {
				a.Description = ""
				a.Archetype = "Nope"
			},
			field:   "description",
			message: "description is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := ValidateArgument(in)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Error())
		})
	}
}

func TestArchetypeValid(t *testing.T) {
	assert.True(t, Technical.Valid())
	assert.True(t, Educational.Valid())
	assert.False(t, Archetype("").Valid())
	assert.False(t, Archetype("Other").Valid())
}
