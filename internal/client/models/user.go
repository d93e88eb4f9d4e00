// Package models defines the client-side domain types shared by the session,
// consent and feature-access components.
package models

import "fmt"

// Role selects which route subtree a user may see.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCandidate || r == RoleRecruiter
}

// ParseRole accepts the lower- or upper-case server spelling of a role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "candidate", "CANDIDATE":
		return RoleCandidate, nil
	case "recruiter", "RECRUITER":
		return RoleRecruiter, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"role"`
	IsVerified  bool   `json:"isVerified"`
}

func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
