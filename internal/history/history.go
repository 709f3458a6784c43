// Package history keeps an in-process log of completed translations.
package history

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry types.
const (
	TypeText   = "text"
	TypeSpeech = "speech"
)

type Entry struct {
	ID               uuid.UUID `json:"id"`
	Timestamp        time.Time `json:"timestamp"`
	OriginalText     string    `json:"original_text"`
	TranslatedText   string    `json:"translated_text"`
	SourceLang       string    `json:"source_lang"`
	TargetLang       string    `json:"target_lang"`
	Type             string    `json:"type"`
	Quality          string    `json:"quality"`
	EnhancedVoice    bool      `json:"enhanced_voice"`
	Outcome          string    `json:"outcome,omitempty"`
	Path             string    `json:"path,omitempty"`
	ProcessTime      float64   `json:"process_time"`
	TranslationError string    `json:"translation_error,omitempty"`
	AudioURL         string    `json:"audio_url,omitempty"`
}

// Filter selects a subset of entries.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterText     Filter = "text"
	FilterSpeech   Filter = "speech"
	FilterEnhanced Filter = "enhanced"
	FilterStandard Filter = "standard"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterText, FilterSpeech, FilterEnhanced, FilterStandard:
		return f, nil
	default:
		return "", fmt.Errorf("unknown history filter %q", s)
	}
}

func (f Filter) match(e Entry) bool {
	switch f {
	case FilterText:
		return e.Type == TypeText
	case FilterSpeech:
		return e.Type == TypeSpeech
	case FilterEnhanced:
		return e.EnhancedVoice
	case FilterStandard:
		return !e.EnhancedVoice
	default:
		return true
	}
}

// Store is safe for concurrent use. Entries are lost on restart.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
	now     func() time.Time
}

// NewStore keeps at most limit entries; zero or less means unbounded.
func NewStore(limit int) *Store {
	return &Store{limit: limit, now: time.Now}
}

// Append stamps e with a fresh ID and timestamp and returns the stored copy.
func (s *Store) Append(e Entry) Entry {
	e.ID = uuid.New()
	e.Timestamp = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	if s.limit > 0 && len(s.entries) > s.limit {
		s.entries = append([]Entry(nil), s.entries[len(s.entries)-s.limit:]...)
	}
	return e
}

// List returns matching entries, newest first.
func (s *Store) List(f Filter) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		if f.match(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops every entry and reports how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = nil
	return n
}
