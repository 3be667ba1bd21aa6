// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// College owns events. Only approved colleges are visible to students.
type College struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Approved bool   `json:"approved"`
}

// Category is immutable reference data used to group events.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Role identifies which view a caller is using.
type Role string

// Roles
const (
	RoleStudent Role = "STUDENT"
	RoleCollege Role = "COLLEGE"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleCollege, RoleAdmin:
		return true
	}
	return false
}
