// Copyright (c) 2026 Komira. All rights reserved.

package sec

// # User Roles

// UserRole is the authorization level granted to an account.
type UserRole string

const (
	// RoleAdmin has unrestricted system access.
	RoleAdmin UserRole = "admin"

	// RoleModerator reviews submissions and moderates community content.
	RoleModerator UserRole = "moderator"

	// RoleAuthor can submit and manage their own titles.
	RoleAuthor UserRole = "author"

	// RoleMember is the default for registered users.
	RoleMember UserRole = "member"
)

// AtLeast reports whether the role meets or exceeds the target. Roles form
// a single linear hierarchy; every admin is also a moderator, and so on.
func (role UserRole) AtLeast(target UserRole) bool {
	return role.level() >= target.level()
}

// level spaces the roles out by ten so intermediate roles can slot in
// without renumbering.
func (role UserRole) level() int {
	switch role {
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleAuthor:
		return 20
	case RoleMember:
		return 10
	default:
		return 0
	}
}
