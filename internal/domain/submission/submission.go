// Package submission models the stored history of answer checks.
package submission

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/ChemCheck/pkg/errors"
)

// Submission is one checked answer and its verdict.
type Submission struct {
	ID         uuid.UUID
	RequestID  string
	Target     string
	Test       string
	Kind       string
	Accepted   bool
	Reason     string
	WrongTerms []string
	CreatedAt  time.Time
}

// NewSubmission assigns a fresh ID and the current time.
func NewSubmission(target, test, kind string, accepted bool, reason string, wrongTerms []string) *Submission {
	if wrongTerms == nil {
		wrongTerms = []string{}
	}
	return &Submission{
		ID:         uuid.New(),
		Target:     target,
		Test:       test,
		Kind:       kind,
		Accepted:   accepted,
		Reason:     reason,
		WrongTerms: wrongTerms,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks the fields the store requires.
func (s *Submission) Validate() error {
	if s == nil {
		return errors.InvalidParam("submission is nil")
	}
	if s.ID == uuid.Nil {
		return errors.InvalidParam("submission id is required")
	}
	if s.Target == "" || s.Test == "" {
		return errors.InvalidParam("target and test are required")
	}
	if s.Reason == "" {
		return errors.InvalidParam("reason is required")
	}
	return nil
}

// Stats counts submissions per verdict reason.
type Stats struct {
	Total    int64
	ByReason map[string]int64
}

// ListFilter narrows List. Zero values mean no restriction.
type ListFilter struct {
	Limit    int
	Reason   string
	Accepted *bool
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Normalize clamps Limit into [1, MaxListLimit].
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	return f
}

// Repository persists submissions.
type Repository interface {
	Save(ctx context.Context, s *Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	// List returns the newest submissions first.
	List(ctx context.Context, filter ListFilter) ([]*Submission, error)
	Stats(ctx context.Context) (*Stats, error)
}
