package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Role represents the available account roles.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
	RoleHR      Role = "hr"
)

// ValidRole reports whether the given role is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleAdmin, RoleHR:
		return true
	default:
		return false
	}
}

// StringList stores a list of strings as a comma-separated column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("unsupported string list source %T", src)
	}
	if raw == "" {
		*l = nil
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*l = out
	return nil
}

// Account represents a registered user: student, admin or HR recruiter.
// HR accounts carry a company affiliation scoping what they may act on.
type Account struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	Department   string     `db:"department" json:"department"`
	CGPA         float64    `db:"cgpa" json:"cgpa"`
	Skills       StringList `db:"skills" json:"skills"`
	ResumePath   string     `db:"resume_path" json:"resume,omitempty"`
	CompanyID    *string    `db:"company_id" json:"company_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
