package org

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Hierarchy(t *testing.T) {
	t.Run("fixed order", func(t *testing.T) {
		assert.Equal(t, Greater, Compare(RoleOwner, RoleAdmin))
		assert.Equal(t, Greater, Compare(RoleAdmin, RoleMember))
		assert.Equal(t, Greater, Compare(RoleOwner, RoleMember))
		assert.Equal(t, Less, Compare(RoleMember, RoleOwner))
		assert.Equal(t, Equal, Compare(RoleAdmin, RoleAdmin))
	})

	t.Run("at least is transitive", func(t *testing.T) {
		roles := Roles()
		for _, a := range roles {
			for _, b := range roles {
				for _, c := range roles {
					if AtLeast(a, b) && AtLeast(b, c) {
						assert.True(t, AtLeast(a, c), "%s >= %s >= %s", a, b, c)
					}
				}
			}
		}
	})

	t.Run("every role is at least itself", func(t *testing.T) {
		for _, r := range Roles() {
			assert.True(t, r.IsAtLeast(r))
		}
	})

	t.Run("unknown role satisfies nothing", func(t *testing.T) {
		unknown := Role("superuser")
		assert.False(t, unknown.IsValid())
		for _, r := range Roles() {
			assert.False(t, AtLeast(unknown, r))
		}
	})
}

func TestRole_CanAssign(t *testing.T) {
	tests := []struct {
		name   string
		holder Role
		target Role
		want   bool
	}{
		{"owner grants owner", RoleOwner, RoleOwner, true},
		{"owner grants member", RoleOwner, RoleMember, true},
		{"admin grants admin", RoleAdmin, RoleAdmin, true},
		{"admin grants member", RoleAdmin, RoleMember, true},
		{"admin cannot grant owner", RoleAdmin, RoleOwner, false},
		{"member grants nothing", RoleMember, RoleMember, false},
		{"invalid target", RoleOwner, Role("guest"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.holder.CanAssign(tt.target))
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("root")
	assert.ErrorIs(t, err, ErrInvalidRole)
}
