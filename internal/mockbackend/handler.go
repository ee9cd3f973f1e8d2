package mockbackend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
)

type statusRequest struct {
	Status string `json:"status"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewRouter serves the store in the backend's {success, appointments} shape.
func NewRouter(store *Store, token string) http.Handler {
	r := chi.NewRouter()
	if token != "" {
		r.Use(requireBearer(token))
	}

	r.Get("/api/appointments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, appointment.ListResponse{Success: true, Appointments: store.List()})
	})

	r.Patch("/api/appointments/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Status) == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Message: "status is required"})
			return
		}

		updated, err := store.SetStatus(chi.URLParam(r, "id"), appointment.CanonicalStatus(req.Status))
		if errors.Is(err, ErrAppointmentNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody{Message: err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"success": true, "appointment": updated})
	})

	return r
}

func requireBearer(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				writeJSON(w, http.StatusUnauthorized, errorBody{Message: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RunConfirmer confirms one pending appointment every interval until ctx ends,
// giving the status watcher transitions to detect.
func RunConfirmer(ctx context.Context, store *Store, every time.Duration, logger zerolog.Logger) {
	if every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if a, ok := store.ConfirmRandomPending(); ok {
				logger.Info().Str("appointment_id", a.ID).Str("doctor", a.DoctorName).Msg("confirmed appointment")
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
