package api

import (
	"time"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
)

type AppointmentResponse struct {
	ID           string     `json:"id"`
	PatientRef   string     `json:"patient_ref,omitempty"`
	PatientName  string     `json:"patient_name,omitempty"`
	PatientEmail string     `json:"patient_email,omitempty"`
	PatientPhone string     `json:"patient_phone,omitempty"`
	DoctorName   string     `json:"doctor_name"`
	Department   string     `json:"department,omitempty"`
	Date         string     `json:"date"`
	Time         string     `json:"time"`
	Status       string     `json:"status"`
	Reason       string     `json:"reason,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at"`
	Expired      bool       `json:"expired"`
}

type UpcomingResponse struct {
	Upcoming []AppointmentResponse `json:"upcoming"`
	Past     []AppointmentResponse `json:"past"`
}

type RosterEntryResponse struct {
	Key          string     `json:"key"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	LastVisit    *time.Time `json:"last_visit"`
	LastVisitRaw string     `json:"last_visit_raw,omitempty"`
	VisitCount   int        `json:"visit_count"`
}

type BMIResponse struct {
	BMI      float64 `json:"bmi"`
	Category string  `json:"category"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(cr appointment.ClassifiedRecord) AppointmentResponse {
	return AppointmentResponse{
		ID:           cr.ID,
		PatientRef:   cr.PatientRef,
		PatientName:  cr.PatientName,
		PatientEmail: cr.PatientEmail,
		PatientPhone: cr.PatientPhone,
		DoctorName:   cr.DoctorName,
		Department:   cr.Department,
		Date:         cr.Date,
		Time:         cr.Time,
		Status:       string(cr.Status),
		Reason:       cr.Reason,
		ScheduledAt:  cr.At,
		Expired:      cr.Expired,
	}
}

func toAppointmentResponses(records []appointment.ClassifiedRecord) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(records))
	for _, cr := range records {
		out = append(out, toAppointmentResponse(cr))
	}
	return out
}

func toRosterResponses(entries []appointment.RosterEntry) []RosterEntryResponse {
	out := make([]RosterEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := RosterEntryResponse{
			Key:          e.Key,
			Name:         e.Name,
			Email:        e.Email,
			Phone:        e.Phone,
			LastVisitRaw: e.LastVisitRaw,
			VisitCount:   e.VisitCount,
		}
		if !e.LastVisit.IsZero() {
			lv := e.LastVisit
			resp.LastVisit = &lv
		}
		out = append(out, resp)
	}
	return out
}
