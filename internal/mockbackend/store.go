package mockbackend

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/hackgods/clinic-dashboard/internal/appointment"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

var departments = []string{
	"Cardiology",
	"Dermatology",
	"General Practice",
	"Neurology",
	"Orthopedics",
	"Pediatrics",
}

var reasons = []string{
	"Follow-up",
	"Annual checkup",
	"Lab results review",
	"Persistent headache",
	"Vaccination",
}

// Store is an in-memory appointment list shaped like the hospital backend's.
type Store struct {
	mu           sync.Mutex
	appointments []appointment.RawAppointment
	faker        *gofakeit.Faker
}

// Generate fills a store with fake appointments spread around now. Time strings
// mix every format the dashboard has to cope with.
func Generate(seed uint64, patients, appointments int, now time.Time) *Store {
	f := gofakeit.New(seed)
	if patients < 1 {
		patients = 1
	}

	people := make([]appointment.RawUser, 0, patients)
	for i := 0; i < patients; i++ {
		people = append(people, appointment.RawUser{
			ID:    uuid.NewString(),
			Name:  f.Name(),
			Email: f.Email(),
			Phone: f.Phone(),
		})
	}

	doctors := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		doctors = append(doctors, "Dr. "+f.LastName())
	}

	list := make([]appointment.RawAppointment, 0, appointments)
	for i := 0; i < appointments; i++ {
		p := people[f.Number(0, len(people)-1)]
		day := now.AddDate(0, 0, f.Number(-30, 30))

		raw := appointment.RawAppointment{
			ID:         uuid.NewString(),
			DoctorName: doctors[f.Number(0, len(doctors)-1)],
			Department: departments[f.Number(0, len(departments)-1)],
			Date:       day.Format("2006-01-02"),
			Time:       fakeClock(f),
			Status:     string(fakeStatus(f)),
			Reason:     reasons[f.Number(0, len(reasons)-1)],
		}

		// Some records only carry flat patient fields, and a few none at all.
		switch f.Number(0, 9) {
		case 0:
		case 1, 2:
			raw.PatientName = p.Name
			raw.PatientEmail = p.Email
			raw.Phone = p.Phone
		default:
			user := p
			raw.User = &user
		}

		list = append(list, raw)
	}

	return &Store{appointments: list, faker: f}
}

func fakeClock(f *gofakeit.Faker) string {
	hour := f.Number(8, 17)
	minute := []int{0, 15, 30, 45}[f.Number(0, 3)]

	switch f.Number(0, 4) {
	case 0:
		return fmt.Sprintf("%02d:%02d", hour, minute)
	case 1:
		return fmt.Sprintf("%d:%02d %s", twelveHour(hour), minute, meridiem(hour))
	case 2:
		return fmt.Sprintf("%d %s", twelveHour(hour), meridiem(hour))
	case 3:
		return ""
	default:
		return fmt.Sprintf("%d:%02d%s", twelveHour(hour), minute, meridiem(hour))
	}
}

func twelveHour(h int) int {
	if h%12 == 0 {
		return 12
	}
	return h % 12
}

func meridiem(h int) string {
	if h >= 12 {
		return "PM"
	}
	return "AM"
}

func fakeStatus(f *gofakeit.Faker) appointment.Status {
	switch n := f.Number(0, 9); {
	case n < 5:
		return appointment.StatusPending
	case n < 8:
		return appointment.StatusConfirmed
	case n < 9:
		return appointment.StatusCancelled
	default:
		return appointment.StatusCompleted
	}
}

// List returns a copy of every appointment.
func (s *Store) List() []appointment.RawAppointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]appointment.RawAppointment(nil), s.appointments...)
}

func (s *Store) SetStatus(id string, status appointment.Status) (appointment.RawAppointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments[i].Status = string(status)
			return s.appointments[i], nil
		}
	}
	return appointment.RawAppointment{}, ErrAppointmentNotFound
}

// ConfirmRandomPending confirms one pending appointment, if any is left.
func (s *Store) ConfirmRandomPending() (appointment.RawAppointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make([]int, 0)
	for i, a := range s.appointments {
		if a.Status == string(appointment.StatusPending) {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return appointment.RawAppointment{}, false
	}

	i := pending[s.faker.Number(0, len(pending)-1)]
	s.appointments[i].Status = string(appointment.StatusConfirmed)
	return s.appointments[i], true
}
