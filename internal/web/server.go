package web

import (
	"context"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/slotbook/internal/booking"
	"github.com/example/slotbook/internal/gateway"
	"github.com/example/slotbook/internal/selection"
)

// Server renders the booking UI. All state lives in the per-session
// machines; handlers translate query params and form posts into machine
// intents and render the result. Gateway failures never reach a
// template as anything but a flash string.
type Server struct {
	api      selection.Scheduler
	sessions *SessionManager
	tmpl     *template.Template
	log      *zap.Logger
}

func NewServer(api selection.Scheduler, sessions *SessionManager, tmpl *template.Template, log *zap.Logger) *Server {
	return &Server{api: api, sessions: sessions, tmpl: tmpl, log: log}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/", s.requireSession(s.handleCalendar))
	mux.HandleFunc("/book", s.requireSession(s.handleConfirm))
	return requestLogging(s.log, mux)
}

func (s *Server) requireSession(next func(http.ResponseWriter, *http.Request, *selection.Machine)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := s.sessions.Get(r)
		if !ok || !m.LoggedIn() {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r, m)
	}
}

type loginData struct {
	Error    string
	Username string
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login.html", loginData{})
	case http.MethodPost:
		_ = r.ParseForm()
		username := strings.TrimSpace(r.FormValue("username"))
		password := r.FormValue("password")

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		m := selection.New(s.api, s.log)
		if err := m.Login(ctx, username, password); err != nil {
			msg := "Login failed. Please try again."
			if gateway.IsAuth(err) {
				msg = "Invalid username or password"
			} else {
				s.log.Warn("login failed", zap.Error(err))
			}
			s.render(w, "login.html", loginData{Error: msg, Username: username})
			return
		}
		if err := s.sessions.Create(w, m); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusFound)
}

// handleCalendar serves the month grid. Month navigation, date clicks
// and slot clicks all arrive as query params on plain links; invalid or
// disallowed ones fall through as no-ops.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request, m *selection.Machine) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var flash string
	if mk := r.URL.Query().Get("month"); mk != "" {
		if t, err := time.Parse("2006-01", mk); err == nil && booking.MonthKey(t) != booking.MonthKey(m.View().Month) {
			if err := m.ChangeMonth(ctx, t); err != nil {
				s.log.Warn("month fetch failed", zap.Error(err))
				flash = "Could not load availability for that month. Please try again."
			}
		}
	}
	if dk := r.URL.Query().Get("date"); dk != "" {
		if t, err := time.Parse(booking.DateLayout, dk); err == nil {
			m.SelectDate(t)
		}
	}
	if start := r.URL.Query().Get("slot"); start != "" {
		v := m.View()
		if v.HasSelection() {
			if rec, ok := v.Index[booking.DateKey(v.SelectedDate)]; ok {
				for _, slot := range rec.TimeSlots {
					if slot.StartTime == start {
						m.SelectSlot(slot)
						break
					}
				}
			}
		}
	}

	s.render(w, "calendar.html", buildCalendarPage(m.View(), flash, false))
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request, m *selection.Machine) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	msg, err := m.Confirm(ctx)
	ok := err == nil
	if err != nil {
		s.log.Warn("booking failed", zap.Error(err))
		msg = failureMessage(err)
	}
	s.render(w, "calendar.html", buildCalendarPage(m.View(), msg, ok))
}

func failureMessage(err error) string {
	switch {
	case gateway.IsConflict(err):
		return "That time slot was just taken. Pick another slot."
	case gateway.IsNotFound(err):
		return "That date is no longer available. Pick another date."
	case gateway.IsValidation(err):
		return "The booking request was not accepted. Pick a date and time slot again."
	default:
		return "Booking failed. Please try again."
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render failed", zap.String("template", name), zap.Error(err))
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func requestLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Info("http request",
			zap.String("request_id", uuid.NewString()),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Start runs the server until ctx is canceled, then shuts down
// gracefully.
func Start(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
