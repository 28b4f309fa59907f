package glossary

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Term is one glossary entry shown to annotators
type Term struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Comment string    `json:"comment"`
	URL     string    `json:"url,omitempty"`
}

// fileTerm is the on-disk shape: [{"term": "...", "comment": "...", "url": "..."}]
type fileTerm struct {
	Term    string `json:"term"`
	Comment string `json:"comment"`
	URL     string `json:"url"`
}

// TermID derives a stable id from the term text, so reloading the file
// keeps ids of unchanged terms.
func TermID(text string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.ToLower(text)))
}

// Store holds the glossary loaded from a JSON file. It is read-only for
// callers; only Load and Watch replace its contents.
type Store struct {
	path string

	mu         sync.RWMutex
	terms      []Term
	modifiedAt time.Time
}

// NewStore creates a store for the glossary file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load (re)reads the glossary file
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read glossary %q: %w", s.path, err)
	}

	var raw []fileTerm
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse glossary %q: %w", s.path, err)
	}

	terms := make([]Term, 0, len(raw))
	for _, t := range raw {
		text := strings.TrimSpace(t.Term)
		if text == "" {
			continue
		}
		terms = append(terms, Term{
			ID:      TermID(text),
			Text:    text,
			Comment: t.Comment,
			URL:     t.URL,
		})
	}

	s.mu.Lock()
	s.terms = terms
	s.modifiedAt = time.Now().UTC()
	s.mu.Unlock()

	return nil
}

// Terms returns a copy of the current glossary
func (s *Store) Terms() []Term {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Term, len(s.terms))
	copy(out, s.terms)
	return out
}

// ModifiedAt is when the glossary was last loaded
func (s *Store) ModifiedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modifiedAt
}

// Watch reloads the glossary whenever its file is written or replaced.
// It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so editors that replace the file are noticed too.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", dir, err)
	}

	return s.watchLoop(ctx, watcher.Events, watcher.Errors)
}

// watchLoop reloads on events for the glossary file. Watcher errors are
// logged and do not stop the loop.
func (s *Store) watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := s.Load(); err != nil {
					log.Printf("[Glossary] Reload failed, keeping previous terms: %v", err)
					continue
				}
				log.Printf("[Glossary] Reloaded %d terms from %s", len(s.Terms()), s.path)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Printf("[Glossary] Watcher error, still watching: %v", err)
		}
	}
}
