package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
	"github.com/hackgods/clinic-dashboard/internal/events"
	"github.com/hackgods/clinic-dashboard/internal/metrics"
)

type stubSource struct {
	raw []appointment.RawAppointment
	err error
}

func (s *stubSource) FetchAppointments(ctx context.Context) ([]appointment.RawAppointment, error) {
	return s.raw, s.err
}

type stubLister struct {
	logs     []events.EventLog
	gotType  string
	gotLimit int
}

func (s *stubLister) ListRecent(ctx context.Context, eventType string, limit int) ([]events.EventLog, error) {
	s.gotType = eventType
	s.gotLimit = limit
	return s.logs, nil
}

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixture() []appointment.RawAppointment {
	return []appointment.RawAppointment{
		{ID: "1", User: &appointment.RawUser{ID: "u1", Name: "Zoe"}, DoctorName: "Dr. A", Date: "2024-03-01", Time: "9 AM", Status: "Completed"},
		{ID: "2", User: &appointment.RawUser{ID: "u1", Name: "Zoe"}, DoctorName: "Dr. A", Date: "2024-03-20", Time: "2:30 PM", Status: "Pending"},
		{ID: "3", PatientName: "Adam", PatientEmail: "adam@example.com", DoctorName: "Dr. B", Date: "2024-03-05", Time: "", Status: "confirmed"},
		{ID: "4", DoctorName: "Dr. B", Date: "", Time: "", Status: "Pending"},
	}
}

func newTestRouter(t *testing.T, src appointment.Source, lister EventLister, deps ...Dependency) http.Handler {
	t.Helper()
	svc := appointment.NewService(src, appointment.NewClassifier(time.UTC)).
		WithClock(func() time.Time { return fixedNow })
	reg := prometheus.NewRegistry()
	return NewRouter(RouterConfig{
		Service:        svc,
		Events:         lister,
		Dependencies:   deps,
		Metrics:        metrics.NewPollMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         zerolog.Nop(),
		Env:            "test",
		Version:        "v0.0.1",
	})
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListAppointments(t *testing.T) {
	h := newTestRouter(t, &stubSource{raw: fixture()}, nil)

	rec := get(t, h, "/appointments")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var got []AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 4)
	assert.True(t, got[0].Expired)
	assert.False(t, got[1].Expired)
	require.NotNil(t, got[1].ScheduledAt)
	assert.Equal(t, 14, got[1].ScheduledAt.Hour())
	assert.Equal(t, "Confirmed", got[2].Status)
	assert.Nil(t, got[3].ScheduledAt)
	assert.False(t, got[3].Expired)
}

func TestListAppointmentsFilters(t *testing.T) {
	h := newTestRouter(t, &stubSource{raw: fixture()}, nil)

	rec := get(t, h, "/appointments?expired=false&status=pending")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, "4", got[1].ID)

	rec = get(t, h, "/appointments?expired=maybe")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAppointmentsBackendDown(t *testing.T) {
	h := newTestRouter(t, &stubSource{err: errors.New("dial tcp: refused")}, nil)

	rec := get(t, h, "/appointments")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "backend_unavailable", body.Error)
}

func TestUpcoming(t *testing.T) {
	h := newTestRouter(t, &stubSource{raw: fixture()}, nil)

	rec := get(t, h, "/appointments/upcoming?patient=u1")
	require.Equal(t, http.StatusOK, rec.Code)

	var got UpcomingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Upcoming, 1)
	require.Len(t, got.Past, 1)
	assert.Equal(t, "2", got.Upcoming[0].ID)
	assert.Equal(t, "1", got.Past[0].ID)
}

func TestRoster(t *testing.T) {
	h := newTestRouter(t, &stubSource{raw: fixture()}, nil)

	rec := get(t, h, "/roster?sort=name")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []RosterEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Adam", got[0].Name)
	assert.Equal(t, 1, got[0].VisitCount)
	assert.Equal(t, "Zoe", got[1].Name)
	assert.Equal(t, 2, got[1].VisitCount)
	assert.Equal(t, "2024-03-20", got[1].LastVisitRaw)

	rec = get(t, h, "/roster?sort=height")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dashboard_roster_patients 2")
}

func TestNotifications(t *testing.T) {
	id := "2"
	lister := &stubLister{logs: []events.EventLog{{ID: 1, EventType: events.EventAppointmentConfirmed, AppointmentID: &id}}}
	h := newTestRouter(t, &stubSource{}, lister)

	rec := get(t, h, "/notifications?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, lister.gotLimit)
	assert.Equal(t, events.EventAppointmentConfirmed, lister.gotType)

	var got []events.EventLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)

	rec = get(t, h, "/notifications?limit=lots")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsDisabled(t *testing.T) {
	h := newTestRouter(t, &stubSource{}, nil)

	rec := get(t, h, "/notifications")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBMI(t *testing.T) {
	h := newTestRouter(t, &stubSource{}, nil)

	rec := get(t, h, "/bmi?height_cm=180&weight_kg=81")
	require.Equal(t, http.StatusOK, rec.Code)

	var got BMIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 25.0, got.BMI)
	assert.Equal(t, "Overweight", got.Category)

	assert.Equal(t, http.StatusBadRequest, get(t, h, "/bmi?height_cm=0&weight_kg=81").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/bmi?height_cm=tall").Code)
}

func TestHealth(t *testing.T) {
	up := PingerFunc(func(ctx context.Context) error { return nil })
	down := PingerFunc(func(ctx context.Context) error { return errors.New("down") })

	tests := []struct {
		name       string
		deps       []Dependency
		wantCode   int
		wantStatus string
	}{
		{"all up", []Dependency{{Name: "backend", Pinger: up, Required: true}, {Name: "redis", Pinger: up}}, http.StatusOK, "ok"},
		{"optional down", []Dependency{{Name: "backend", Pinger: up, Required: true}, {Name: "redis", Pinger: down}}, http.StatusOK, "degraded"},
		{"required down", []Dependency{{Name: "backend", Pinger: down, Required: true}, {Name: "redis", Pinger: up}}, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, &stubSource{}, nil, tt.deps...)

			rec := get(t, h, "/health/ready")
			require.Equal(t, tt.wantCode, rec.Code)

			var got ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Len(t, got.Dependencies, len(tt.deps))
		})
	}

	rec := get(t, newTestRouter(t, &stubSource{}, nil), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestRouter(t, &stubSource{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
