package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/slotbook/internal/booking"
	"github.com/example/slotbook/internal/gateway"
)

// fakeSchedulingAPI serves just enough of the remote contract for the
// UI flow: login, one bookable date on the 15th of any month, bookings.
type fakeSchedulingAPI struct {
	conflict bool
	bookings int
}

func (f *fakeSchedulingAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":  booking.User{ID: "u1", Username: "alice"},
			"token": "T1",
		})
	})
	mux.HandleFunc("/api/availability", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer T1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		date := fmt.Sprintf("%s-%s-15", r.URL.Query().Get("year"), pad(r.URL.Query().Get("month")))
		_ = json.NewEncoder(w).Encode([]booking.AvailableDate{
			{ID: "a1", Date: date, TimeSlots: []booking.TimeSlot{
				{StartTime: "09:00", EndTime: "09:30", IsAvailable: f.bookings == 0},
				{StartTime: "10:00", EndTime: "10:30", IsAvailable: true},
			}},
		})
	})
	mux.HandleFunc("/api/bookings", func(w http.ResponseWriter, r *http.Request) {
		if f.conflict {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "slot no longer available"})
			return
		}
		f.bookings++
		var req struct {
			AvailabilityID string           `json:"availabilityId"`
			TimeSlot       booking.SlotSpan `json:"timeSlot"`
			Date           string           `json:"date"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(booking.Booking{
			ID: "b1", UserID: "u1", AvailabilityID: req.AvailabilityID,
			TimeSlot: req.TimeSlot, Date: req.Date,
		})
	})
	return mux
}

func pad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func newTestUI(t *testing.T, fake *fakeSchedulingAPI) (*httptest.Server, *http.Client) {
	t.Helper()
	apiSrv := httptest.NewServer(fake.handler())
	t.Cleanup(apiSrv.Close)

	tmpl, err := ParseTemplates()
	require.NoError(t, err)

	sessions := NewSessionManager(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32))
	srv := NewServer(gateway.New(apiSrv.URL+"/api", 5*time.Second), sessions, tmpl, zap.NewNop())

	ui := httptest.NewServer(srv.Routes())
	t.Cleanup(ui.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return ui, &http.Client{Jar: jar}
}

func get(t *testing.T, c *http.Client, rawURL string) (string, *http.Response) {
	t.Helper()
	res, err := c.Get(rawURL)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b), res
}

func postForm(t *testing.T, c *http.Client, rawURL string, form url.Values) string {
	t.Helper()
	res, err := c.PostForm(rawURL, form)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return string(b)
}

func loginAlice(t *testing.T, c *http.Client, base string) string {
	t.Helper()
	return postForm(t, c, base+"/login", url.Values{"username": {"alice"}, "password": {"secret"}})
}

func monthDay15() string {
	now := time.Now()
	return fmt.Sprintf("%04d-%02d-15", now.Year(), int(now.Month()))
}

func TestCalendarRequiresSession(t *testing.T) {
	ui, client := newTestUI(t, &fakeSchedulingAPI{})
	body, res := get(t, client, ui.URL+"/")
	assert.Equal(t, "/login", res.Request.URL.Path)
	assert.Contains(t, body, "Login")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ui, client := newTestUI(t, &fakeSchedulingAPI{})
	body := postForm(t, client, ui.URL+"/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	assert.Contains(t, body, "Invalid username or password")
}

func TestLoginShowsCalendar(t *testing.T) {
	ui, client := newTestUI(t, &fakeSchedulingAPI{})
	body := loginAlice(t, client, ui.URL)
	assert.Contains(t, body, "Select a Date &amp; Time")
	assert.Contains(t, body, "date="+monthDay15())
}

func TestBookingFlow(t *testing.T) {
	fake := &fakeSchedulingAPI{}
	ui, client := newTestUI(t, fake)
	loginAlice(t, client, ui.URL)

	day := monthDay15()
	body, _ := get(t, client, ui.URL+"/?date="+day)
	assert.Contains(t, body, "09:00")

	body, _ = get(t, client, ui.URL+"/?date="+day+"&slot=09:00")
	assert.Contains(t, body, "Confirm Booking")

	body = postForm(t, client, ui.URL+"/book", nil)
	assert.Contains(t, body, "Booking confirmed for")
	assert.Contains(t, body, "09:00")
	assert.Equal(t, 1, fake.bookings)
	// selection is gone, so the confirm button is too
	assert.NotContains(t, body, "Confirm Booking")
}

func TestBookingConflictShowsFailure(t *testing.T) {
	fake := &fakeSchedulingAPI{conflict: true}
	ui, client := newTestUI(t, fake)
	loginAlice(t, client, ui.URL)

	day := monthDay15()
	get(t, client, ui.URL+"/?date="+day+"&slot=09:00")
	body := postForm(t, client, ui.URL+"/book", nil)
	assert.Contains(t, body, "just taken")
	// selection survives the failure, the user can retry
	assert.Contains(t, body, "Confirm Booking")
}

func TestLogoutEndsSession(t *testing.T) {
	ui, client := newTestUI(t, &fakeSchedulingAPI{})
	loginAlice(t, client, ui.URL)

	postForm(t, client, ui.URL+"/logout", nil)
	_, res := get(t, client, ui.URL+"/")
	assert.Equal(t, "/login", res.Request.URL.Path)
}
