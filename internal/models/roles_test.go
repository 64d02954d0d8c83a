package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrder(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleEditor))
	assert.True(t, RoleAdmin.AtLeast(RoleUser))
	assert.True(t, RoleEditor.AtLeast(RoleUser))
	assert.True(t, RoleEditor.AtLeast(RoleEditor))
	assert.False(t, RoleUser.AtLeast(RoleEditor))
	assert.False(t, RoleEditor.AtLeast(RoleAdmin))
	assert.False(t, Role("root").AtLeast(RoleUser))
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("viewer")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestUserJSON(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"username":"ana","role":"editor"}`), &u))
	assert.Equal(t, RoleEditor, u.Role)

	err := json.Unmarshal([]byte(`{"id":3,"role":"owner"}`), &u)
	assert.ErrorIs(t, err, ErrUnknownRole)

	out, err := json.Marshal(User{ID: 1, Role: RoleUser, PasswordHash: "$2a$secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
}

func TestPagination(t *testing.T) {
	p := NewPagination(3, 10, 25)
	assert.Equal(t, 3, p.Pages)
	assert.Equal(t, 20, p.Offset())

	assert.Equal(t, 0, NewPagination(1, 10, 0).Pages)
	assert.Equal(t, 1, NewPagination(1, 10, 10).Pages)
}
