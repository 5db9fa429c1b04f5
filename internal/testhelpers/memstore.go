package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/vigiasalud/alert-ingestor/internal/models"
)

// MemoryStore is an in-memory stand-in for the alert repository. It enforces
// the same two unique constraints as the alertas table with PostgreSQL NULL
// semantics: a constraint only fires when all of its columns are non-null.
type MemoryStore struct {
	mu   sync.Mutex
	rows []models.Alert

	// FailWith, when set, makes Save return this error. When FailAfter is
	// also positive, that many saves succeed first.
	FailWith  error
	FailAfter int
	attempts  int
}

// Save inserts the alert or reports a duplicate on a natural-key collision.
func (s *MemoryStore) Save(_ context.Context, alert *models.Alert) (models.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.FailWith != nil && s.attempts > s.FailAfter {
		return models.OutcomeErrored, s.FailWith
	}

	for i := range s.rows {
		if collides(&s.rows[i], alert) {
			return models.OutcomeDuplicate, nil
		}
	}

	stored := *alert
	stored.ID = int64(len(s.rows) + 1)
	s.rows = append(s.rows, stored)
	return models.OutcomeSaved, nil
}

// Rows returns a copy of the stored rows.
func (s *MemoryStore) Rows() []models.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]models.Alert, len(s.rows))
	copy(rows, s.rows)
	return rows
}

// Count returns the number of stored rows.
func (s *MemoryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func collides(existing, candidate *models.Alert) bool {
	// (source_url, title, presentation_date)
	if strPtrEq(existing.SourceURL, candidate.SourceURL) &&
		existing.SourceURL != nil &&
		existing.Title == candidate.Title &&
		timePtrEq(existing.PresentationDate, candidate.PresentationDate) &&
		existing.PresentationDate != nil {
		return true
	}

	// (title, presentation_date)
	if existing.Title == candidate.Title &&
		timePtrEq(existing.PresentationDate, candidate.PresentationDate) &&
		existing.PresentationDate != nil {
		return true
	}

	return false
}

func strPtrEq(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func timePtrEq(a, b *time.Time) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}
