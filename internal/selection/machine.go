// Package selection holds the client-side booking flow state: the
// displayed month, its cached availability, and the user's in-progress
// choice of date and slot. The remote API stays the source of truth;
// the machine only decides which intents are allowed and when to
// refetch.
package selection

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/slotbook/internal/booking"
	"github.com/example/slotbook/internal/gateway"
)

// Scheduler is the slice of the remote gateway the machine drives.
// *gateway.Client satisfies it; tests substitute fakes.
type Scheduler interface {
	Login(ctx context.Context, username, password string) (booking.User, gateway.Credential, error)
	FetchAvailability(ctx context.Context, cred gateway.Credential, year, month int) ([]booking.AvailableDate, error)
	CreateBooking(ctx context.Context, cred gateway.Credential, availabilityID string, slot booking.SlotSpan, date string) (booking.Booking, error)
}

// Machine is the selection state machine. States are LoggedOut and
// LoggedIn{month, availability, selectedDate?, selectedSlot?}. Intents
// arrive from concurrent HTTP handlers, so a mutex serializes them; the
// lock is released around network calls so a slow fetch never blocks
// navigation, and fetch results are applied only if the month they
// targeted is still the one on screen.
type Machine struct {
	api Scheduler
	log *zap.Logger
	now func() time.Time

	mu      sync.Mutex
	user    booking.User
	cred    gateway.Credential
	month   time.Time // first day of the displayed month
	dates   []booking.AvailableDate
	index   map[string]booking.AvailableDate
	selDate time.Time // zero when nothing selected
	selSlot *booking.TimeSlot
}

func New(api Scheduler, log *zap.Logger) *Machine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Machine{api: api, log: log, now: time.Now}
}

// View is a consistent snapshot for rendering.
type View struct {
	User         booking.User
	Month        time.Time
	Dates        []booking.AvailableDate
	Index        map[string]booking.AvailableDate
	SelectedDate time.Time
	SelectedSlot *booking.TimeSlot
}

func (v View) HasSelection() bool { return !v.SelectedDate.IsZero() }

func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := View{
		User:         m.user,
		Month:        m.month,
		Dates:        m.dates,
		Index:        m.index,
		SelectedDate: m.selDate,
	}
	if m.selSlot != nil {
		s := *m.selSlot
		v.SelectedSlot = &s
	}
	return v
}

func (m *Machine) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cred != ""
}

// Login authenticates against the API and, on success, loads the
// current month's availability. A fetch failure does not undo the
// login; the calendar just starts empty with a diagnostic logged.
func (m *Machine) Login(ctx context.Context, username, password string) error {
	user, cred, err := m.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.user = user
	m.cred = cred
	m.month = booking.MonthStart(m.now())
	m.selDate = time.Time{}
	m.selSlot = nil
	m.dates = nil
	m.index = nil
	m.mu.Unlock()

	if err := m.refresh(ctx); err != nil {
		m.log.Warn("availability fetch after login failed", zap.Error(err))
	}
	return nil
}

// Logout drops the credential and every piece of cached state. No
// further request carries the old token.
func (m *Machine) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = booking.User{}
	m.cred = ""
	m.month = time.Time{}
	m.dates = nil
	m.index = nil
	m.selDate = time.Time{}
	m.selSlot = nil
}

// ChangeMonth moves the calendar to anchor's month and refetches.
// Selection is cleared before the fetch starts: a choice made under the
// old month's data is invalid the moment the month changes.
func (m *Machine) ChangeMonth(ctx context.Context, anchor time.Time) error {
	m.mu.Lock()
	if m.cred == "" {
		m.mu.Unlock()
		return fmt.Errorf("not logged in")
	}
	m.month = booking.MonthStart(anchor)
	m.selDate = time.Time{}
	m.selSlot = nil
	m.mu.Unlock()
	return m.refresh(ctx)
}

// Refresh refetches the displayed month without touching the selection.
func (m *Machine) Refresh(ctx context.Context) error { return m.refresh(ctx) }

// refresh fetches availability for the month current at call time and
// applies the result only if that month is still displayed. A stale
// response for a month the user already left is silently discarded;
// that is the only cancellation this flow has.
func (m *Machine) refresh(ctx context.Context) error {
	m.mu.Lock()
	cred, target := m.cred, m.month
	m.mu.Unlock()
	if cred == "" {
		return fmt.Errorf("not logged in")
	}

	dates, err := m.api.FetchAvailability(ctx, cred, target.Year(), int(target.Month()))

	m.mu.Lock()
	defer m.mu.Unlock()
	if booking.MonthKey(target) != booking.MonthKey(m.month) {
		return nil // superseded by a later month change
	}
	if err != nil {
		// failure means "no availability this month", never stale data
		m.dates = nil
		m.index = nil
		return err
	}
	m.dates = dates
	m.index = booking.Index(dates)
	return nil
}

// SelectDate lands only when some cached availability record's date
// string equals d's date key. Clicking any other day is a no-op.
// Selecting a date always clears the slot.
func (m *Machine) SelectDate(d time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[booking.DateKey(d)]; !ok {
		return false
	}
	m.selDate = d
	m.selSlot = nil
	return true
}

// SelectSlot lands only for an open slot.
func (m *Machine) SelectSlot(s booking.TimeSlot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !s.IsAvailable {
		return false
	}
	slot := s
	m.selSlot = &slot
	return true
}

// Confirm books the selected slot. It requires both a selected date and
// slot, and the date must still match a cached availability record; if
// a refetch removed it the confirm fails locally without a gateway
// call. On success the selection is cleared, a human-readable message
// returned, and availability refetched so slot flags reflect the new
// state. On failure the selection is left untouched so the user can
// retry against fresh data.
func (m *Machine) Confirm(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.selDate.IsZero() || m.selSlot == nil {
		m.mu.Unlock()
		return "", fmt.Errorf("no date and time slot selected")
	}
	key := booking.DateKey(m.selDate)
	avail, ok := m.index[key]
	if !ok {
		m.mu.Unlock()
		return "", gateway.NotFound("confirm booking", "selected date is no longer available")
	}
	cred := m.cred
	date := m.selDate
	slot := *m.selSlot
	m.mu.Unlock()

	span := booking.SlotSpan{StartTime: slot.StartTime, EndTime: slot.EndTime}
	if _, err := m.api.CreateBooking(ctx, cred, avail.ID, span, key); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.selDate = time.Time{}
	m.selSlot = nil
	m.mu.Unlock()

	if err := m.refresh(ctx); err != nil {
		m.log.Warn("availability refresh after booking failed", zap.Error(err))
	}
	return fmt.Sprintf("Booking confirmed for %s at %s", date.Format("January 2, 2006"), slot.StartTime), nil
}
