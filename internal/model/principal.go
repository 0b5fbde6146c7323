package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleDispatcher Role = "DISPATCHER"
	RoleDriver     Role = "DRIVER"
)

// Principal is the authenticated caller extracted from the access
// token. BusinessID scopes every data access.
type Principal struct {
	UserID     uuid.UUID
	BusinessID uuid.UUID
	Role       Role
	DriverID   *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsDispatcher() bool {
	return p.Role == RoleDispatcher
}

func (p Principal) IsDriver() bool {
	return p.Role == RoleDriver
}
