package model

import (
	"strings"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "ADMIN"
	UserRoleManager UserRole = "MANAGER"
	UserRoleViewer  UserRole = "VIEWER"
)

// Principal is the authenticated caller taken from the access token.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsViewer() bool {
	return p.Role == UserRoleViewer
}

func (p Principal) CanMutate() bool {
	return p.Role == UserRoleAdmin || p.Role == UserRoleManager
}

// Actor is the name written to audit fields.
func (p Principal) Actor() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return p.UserID.String()
}
