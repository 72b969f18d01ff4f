package models

import "time"

// ApplicationStatus enumerates the application lifecycle states.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "pending"
	StatusShortlisted ApplicationStatus = "shortlisted"
	StatusRejected    ApplicationStatus = "rejected"
	StatusHired       ApplicationStatus = "hired"
)

// ValidStatus reports whether the value is one of the known states.
func ValidStatus(s ApplicationStatus) bool {
	switch s {
	case StatusPending, StatusShortlisted, StatusRejected, StatusHired:
		return true
	default:
		return false
	}
}

// NotifiableStatus reports whether a transition into this status triggers
// a notification to the student.
func NotifiableStatus(s ApplicationStatus) bool {
	return s == StatusShortlisted || s == StatusHired
}

// Application records a student's request to be considered for a company listing.
// At most one application may exist per (student, company) pair.
type Application struct {
	ID        string            `db:"id" json:"id"`
	StudentID string            `db:"student_id" json:"student_id"`
	CompanyID string            `db:"company_id" json:"company_id"`
	Status    ApplicationStatus `db:"status" json:"status"`
	AppliedAt time.Time         `db:"applied_at" json:"applied_at"`
}

// ApplicationDetail expands an application with student and company context.
// The student's credential hash is never selected into this view.
type ApplicationDetail struct {
	Application
	StudentName       string  `db:"student_name" json:"student_name"`
	StudentEmail      string  `db:"student_email" json:"student_email"`
	StudentDepartment string  `db:"student_department" json:"student_department"`
	StudentCGPA       float64 `db:"student_cgpa" json:"student_cgpa"`
	CompanyName       string  `db:"company_name" json:"company_name"`
	CompanyRole       string  `db:"company_role" json:"company_role"`
	CompanyLocation   string  `db:"company_location" json:"company_location"`
}
