package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAppointments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/doctor/appointments", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"appointments":[{"_id":"1","doctorName":"Dr. X","date":"2024-01-01","time":"9 AM","status":"Pending","user":{"_id":"u1","name":"Ann"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", Path: "api/doctor/appointments", Token: "tok"})
	got, err := c.FetchAppointments(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	require.NotNil(t, got[0].User)
	assert.Equal(t, "Ann", got[0].User.Name)
}

func TestFetchAppointmentsNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"success":true,"appointments":[]}`))
	}))
	defer srv.Close()

	got, err := NewClient(Config{BaseURL: srv.URL}).FetchAppointments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchAppointmentsErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   "kaput",
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.True(t, errors.As(err, &se))
				assert.Equal(t, http.StatusInternalServerError, se.Code)
				assert.Equal(t, "kaput", se.Body)
			},
		},
		{
			name:   "unsuccessful",
			status: http.StatusOK,
			body:   `{"success":false,"message":"token expired"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnsuccessful)
			},
		},
		{
			name:   "bad json",
			status: http.StatusOK,
			body:   `{"success":tru`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "decode appointment list")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(Config{BaseURL: srv.URL}).FetchAppointments(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestFetchAppointmentsHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewClient(Config{BaseURL: srv.URL}).FetchAppointments(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(Config{BaseURL: srv.URL}).Ping(context.Background()))
}
