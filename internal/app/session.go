package app

import (
	"sync"
	"time"

	"restart50-service/internal/domain"
)

const (
	DefaultFontSize = 18
	MinFontSize     = 12
	MaxFontSize     = 28
	FontStep        = 2

	// ChatDisplayLimit is how many chat entries are shown.
	ChatDisplayLimit = 30
	// DefaultMaxChatHistory bounds the entries a session keeps.
	DefaultMaxChatHistory = 200
)

var (
	lightPalette    = domain.Palette{Background: "#f7fbfd", Card: "#ffffff", Accent: "#4EC0F0", Muted: "#1b5899"}
	contrastPalette = domain.Palette{Background: "#000000", Card: "#111111", Accent: "#FFD166", Muted: "#FFFFFF"}
)

// PreferenceAction is a one-step change to the accessibility settings.
type PreferenceAction string

const (
	FontIncrease   PreferenceAction = "font-increase"
	FontDecrease   PreferenceAction = "font-decrease"
	FontReset      PreferenceAction = "font-reset"
	ToggleContrast PreferenceAction = "contrast"
	ToggleAutoRead PreferenceAction = "auto-read"
)

// Session is the per-browser context: who is logged in, accessibility
// settings and the transient chat history. It lives until the client ends it
// or the session store drops it.
type Session struct {
	id         string
	createdAt  time.Time
	now        func() time.Time
	maxHistory int

	mu           sync.RWMutex
	userID       string
	fontSize     int
	highContrast bool
	autoRead     bool
	voice        domain.Voice
	history      []domain.ChatEntry
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string, maxHistory int) *Session {
	return NewSessionWithClock(id, maxHistory, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, maxHistory int, now func() time.Time) *Session {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxChatHistory
	}
	return &Session{
		id:         id,
		createdAt:  now(),
		now:        now,
		maxHistory: maxHistory,
		fontSize:   DefaultFontSize,
		voice:      domain.VoiceFemale,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// UserID is empty until a login binds a user.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

func (s *Session) bindUser(id string) {
	s.mu.Lock()
	s.userID = id
	s.mu.Unlock()
}

// Preferences returns a snapshot of the accessibility settings.
func (s *Session) Preferences() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preferencesLocked()
}

func (s *Session) preferencesLocked() domain.Preferences {
	palette := lightPalette
	if s.highContrast {
		palette = contrastPalette
	}
	return domain.Preferences{
		FontSize:     s.fontSize,
		HighContrast: s.highContrast,
		AutoRead:     s.autoRead,
		Voice:        s.voice,
		Palette:      palette,
	}
}

// Apply performs a preference action and returns the new settings.
// It reports false for an unknown action.
func (s *Session) Apply(action PreferenceAction) (domain.Preferences, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch action {
	case FontIncrease:
		s.fontSize = min(MaxFontSize, s.fontSize+FontStep)
	case FontDecrease:
		s.fontSize = max(MinFontSize, s.fontSize-FontStep)
	case FontReset:
		s.fontSize = DefaultFontSize
	case ToggleContrast:
		s.highContrast = !s.highContrast
	case ToggleAutoRead:
		s.autoRead = !s.autoRead
	default:
		return s.preferencesLocked(), false
	}
	return s.preferencesLocked(), true
}

func (s *Session) setVoice(v domain.Voice) domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = v
	return s.preferencesLocked()
}

// appendExchange records a question and its answer as adjacent entries.
func (s *Session) appendExchange(question, answer string) (domain.ChatEntry, domain.ChatEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(domain.RoleUser, question), s.appendLocked(domain.RoleBot, answer)
}

func (s *Session) appendLocked(role domain.ChatRole, text string) domain.ChatEntry {
	entry := domain.ChatEntry{Role: role, Text: text, Timestamp: domain.NewTimestamp(s.now())}
	s.history = append(s.history, entry)
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = append([]domain.ChatEntry(nil), s.history[over:]...)
	}
	return entry
}

// History returns up to limit most recent chat entries, oldest first.
// A non-positive limit returns everything retained.
func (s *Session) History(limit int) []domain.ChatEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if limit > 0 && len(s.history) > limit {
		start = len(s.history) - limit
	}
	return append([]domain.ChatEntry(nil), s.history[start:]...)
}

func (s *Session) clearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}
