package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
	"github.com/hackgods/clinic-dashboard/internal/events"
	"github.com/hackgods/clinic-dashboard/internal/healthrecord"
	"github.com/hackgods/clinic-dashboard/internal/metrics"
)

// EventLister is the read side of the confirmation event log.
type EventLister interface {
	ListRecent(ctx context.Context, eventType string, limit int) ([]events.EventLog, error)
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := appointment.Filter{
			PatientRef: q.Get("patient"),
		}
		if s := q.Get("status"); s != "" {
			filter.Status = appointment.CanonicalStatus(s)
		}
		if s := q.Get("expired"); s != "" {
			expired, err := strconv.ParseBool(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_expired", "expired must be true or false")
				return
			}
			filter.Expired = &expired
		}

		records, err := svc.ListClassified(r.Context(), filter)
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(records))
	}
}

func upcomingAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upcoming, past, err := svc.Upcoming(r.Context(), r.URL.Query().Get("patient"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, UpcomingResponse{
			Upcoming: toAppointmentResponses(upcoming),
			Past:     toAppointmentResponses(past),
		})
	}
}

func rosterHandler(svc *appointment.Service, m *metrics.PollMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roster, err := svc.Roster(r.Context(), r.URL.Query().Get("sort"))
		if err != nil {
			handleServiceError(w, err)
			return
		}

		m.SetRosterSize(len(roster))
		writeJSON(w, http.StatusOK, toRosterResponses(roster))
	}
}

func notificationsHandler(lister EventLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lister == nil {
			writeError(w, http.StatusServiceUnavailable, "event_log_disabled", "POSTGRES_DSN is not configured")
			return
		}

		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
				return
			}
			limit = n
		}

		logs, err := lister.ListRecent(r.Context(), events.EventAppointmentConfirmed, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, logs)
	}
}

func bmiHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	height, err1 := strconv.ParseFloat(q.Get("height_cm"), 64)
	weight, err2 := strconv.ParseFloat(q.Get("weight_kg"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "invalid_measurement", "height_cm and weight_kg must be numbers")
		return
	}

	bmi, err := healthrecord.ComputeBMI(height, weight)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_measurement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, BMIResponse{BMI: bmi, Category: string(healthrecord.Category(bmi))})
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrUnknownSort):
		writeError(w, http.StatusBadRequest, "invalid_sort", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "backend_timeout", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "backend_unavailable", err.Error())
	}
}
