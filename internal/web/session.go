package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"

	"github.com/example/slotbook/internal/selection"
)

const sessionName = "slotbook_session"

const sessionTTL = 24 * time.Hour

// SessionManager pairs a securecookie holding an opaque session ID with
// the in-memory state machine for that browser session. The bearer
// token lives inside the machine, never in the cookie.
type SessionManager struct {
	sc *securecookie.SecureCookie

	mu       sync.Mutex
	machines map[string]*selection.Machine
}

func NewSessionManager(hashKey, blockKey []byte) *SessionManager {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &SessionManager{sc: sc, machines: make(map[string]*selection.Machine)}
}

func (s *SessionManager) Create(w http.ResponseWriter, m *selection.Machine) error {
	id := uuid.NewString()
	encoded, err := s.sc.Encode(sessionName, map[string]string{"sid": id})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	s.mu.Lock()
	s.machines[id] = m
	s.mu.Unlock()
	return nil
}

func (s *SessionManager) Get(r *http.Request) (*selection.Machine, bool) {
	id, ok := s.sessionID(r)
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.machines[id]
	return m, ok
}

// Clear logs the session's machine out, drops it, and expires the
// cookie.
func (s *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	if id, ok := s.sessionID(r); ok {
		s.mu.Lock()
		if m, ok := s.machines[id]; ok {
			m.Logout()
			delete(s.machines, id)
		}
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *SessionManager) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionName)
	if err != nil {
		return "", false
	}
	value := map[string]string{}
	if err := s.sc.Decode(sessionName, c.Value, &value); err != nil {
		return "", false
	}
	id := value["sid"]
	return id, id != ""
}
