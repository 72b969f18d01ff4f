package models

import "time"

// Company represents a partner company's job listing with eligibility criteria.
type Company struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Role        string     `db:"role" json:"role"`
	Location    string     `db:"location" json:"location"`
	CTC         float64    `db:"ctc" json:"ctc"`
	Description string     `db:"description" json:"description"`
	MinCGPA     float64    `db:"min_cgpa" json:"min_cgpa"`
	Branches    StringList `db:"branches" json:"branches"`
	Skills      StringList `db:"skills" json:"skills"`
	Deadline    time.Time  `db:"deadline" json:"deadline"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}
