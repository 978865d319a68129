// Package feedback collects post-onboarding satisfaction entries.
package feedback

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	dErrors "aptic/pkg/domain-errors"
)

// Service validates and stores feedback entries in memory, newest first.
type Service struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

func NewService() *Service {
	return &Service{now: time.Now}
}

// Submit validates and records one entry. The user name defaults to Anonymous
// when blank.
//
// Errors: returns CodeBadRequest when the rating is outside 1..5 or the
// comment is blank.
func (s *Service) Submit(_ context.Context, userName string, rating int, comment string) (*Entry, error) {
	if rating < 1 || rating > 5 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "rating must be between 1 and 5")
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "comment must not be empty")
	}
	userName = strings.TrimSpace(userName)
	if userName == "" {
		userName = "Anonymous"
	}

	entry := Entry{
		ID:        uuid.NewString(),
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	s.entries = append([]Entry{entry}, s.entries...)
	s.mu.Unlock()
	return &entry, nil
}

// List returns all entries, newest first.
func (s *Service) List(_ context.Context) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
