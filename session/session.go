// Package session holds the per-client ephemeral state: who is logged in
// and which page is active. Sessions live in process memory only and die on
// logout or restart.
package session

import (
	"errors"
	"sync"
	"time"
)

// Page is a closed set of page identifiers. Navigation goes through the
// transition table below; arbitrary page strings are rejected.
type Page string

const (
	PageLogin    Page = "login"
	PageSignup   Page = "signup"
	PageHome     Page = "home"
	PageLogWater Page = "logwater"
	PageHistory  Page = "history"
	PageSettings Page = "settings"
	PageTasks    Page = "tasks"
	PageWeather  Page = "weather"
)

var (
	ErrUnknownPage       = errors.New("session: unknown page")
	ErrInvalidTransition = errors.New("session: transition not allowed")
	ErrNoSession         = errors.New("session: no such session")
)

// transitions lists the pages reachable from each page. Authenticated pages
// are mutually reachable; the auth pages only lead into the app through a
// successful login.
var transitions = map[Page][]Page{
	PageLogin:    {PageSignup, PageHome},
	PageSignup:   {PageLogin},
	PageHome:     {PageLogWater, PageHistory, PageSettings, PageTasks, PageWeather, PageLogin},
	PageLogWater: {PageHome, PageHistory, PageSettings, PageTasks, PageWeather, PageLogin},
	PageHistory:  {PageHome, PageLogWater, PageSettings, PageTasks, PageWeather, PageLogin},
	PageSettings: {PageHome, PageLogWater, PageHistory, PageTasks, PageWeather, PageLogin},
	PageTasks:    {PageHome, PageLogWater, PageHistory, PageSettings, PageWeather, PageLogin},
	PageWeather:  {PageHome, PageLogWater, PageHistory, PageSettings, PageTasks, PageLogin},
}

func ValidPage(p Page) bool {
	_, ok := transitions[p]
	return ok
}

// CanNavigate reports whether to is reachable from from.
func CanNavigate(from, to Page) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Session is the explicit per-client state object; there are no ambient
// globals behind it.
type Session struct {
	UID       string    `json:"uid"`
	Page      Page      `json:"page"`
	StartedAt time.Time `json:"started_at"`
}

// Manager tracks live sessions keyed by token.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// Start opens a session on the home page for an authenticated user,
// replacing any previous session under the same token.
func (m *Manager) Start(token, uid string) *Session {
	s := &Session{UID: uid, Page: PageHome, StartedAt: time.Now()}
	m.mu.Lock()
	m.sessions[token] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	copy := *s
	return &copy, nil
}

// Navigate moves the session to another page if the transition table allows
// it.
func (m *Manager) Navigate(token string, to Page) (*Session, error) {
	if !ValidPage(to) {
		return nil, ErrUnknownPage
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNoSession
	}
	if !CanNavigate(s.Page, to) {
		return nil, ErrInvalidTransition
	}
	s.Page = to
	copy := *s
	return &copy, nil
}

// End destroys the session; ending an unknown token is a no-op.
func (m *Manager) End(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
