package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"PATIENT", RolePatient, true},
		{"doctor", RoleDoctor, true},
		{"checkup-center", RoleCheckupCenter, true},
		{"Med_Store", RoleMedStore, true},
		{"admin", RoleAdmin, true},
		{"nurse", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestIsProvider(t *testing.T) {
	assert.True(t, RoleDoctor.IsProvider())
	assert.True(t, RoleCheckupCenter.IsProvider())
	assert.False(t, RolePatient.IsProvider())
	assert.False(t, RoleMedStore.IsProvider())
	assert.False(t, RoleAdmin.IsProvider())
}
