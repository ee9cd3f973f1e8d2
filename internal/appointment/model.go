package appointment

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
	StatusRejected  Status = "Rejected"
)

var knownStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
	StatusRejected,
}

// RawUser is the populated patient reference the backend embeds under "user".
type RawUser struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// RawAppointment is one element of the backend's appointment list, as sent.
type RawAppointment struct {
	ID           string   `json:"_id"`
	User         *RawUser `json:"user,omitempty"`
	DoctorName   string   `json:"doctorName"`
	Department   string   `json:"department,omitempty"`
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Status       string   `json:"status"`
	Reason       string   `json:"reason,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	PatientName  string   `json:"patientName,omitempty"`
	PatientEmail string   `json:"patientEmail,omitempty"`
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
}

type ListResponse struct {
	Success      bool             `json:"success"`
	Appointments []RawAppointment `json:"appointments"`
}

// Record is a normalized appointment. Day is zero when Date could not be parsed.
type Record struct {
	ID           string
	PatientRef   string
	PatientName  string
	PatientEmail string
	PatientPhone string
	DoctorName   string
	Department   string
	Date         string
	Day          time.Time
	Time         string
	Status       Status
	Reason       string
	Notes        string
}

type Classification struct {
	At      *time.Time
	Expired bool
}

type ClassifiedRecord struct {
	Record
	Classification
}

type RosterEntry struct {
	Key          string
	Name         string
	Email        string
	Phone        string
	LastVisit    time.Time
	LastVisitRaw string
	VisitCount   int
}
