// Package chem defines the request, response and event payloads exchanged
// by the ChemCheck HTTP API, CLI and message broker. Only plain data lives
// here; the statement model itself is in internal/domain/chem.
package chem

import (
	"time"

	"github.com/turtacn/ChemCheck/pkg/types/common"
)

// StatementKind is the serialized type tag of a parsed statement.
type StatementKind string

const (
	KindExpression      StatementKind = "expression"
	KindEquation        StatementKind = "equation"
	KindNuclearEquation StatementKind = "nuclear_equation"
)

// TermView is one term of a side. Charge and atom counts are rendered as
// exact fractions ("3", "-1/2").
type TermView struct {
	Text        string            `json:"text"`
	Error       bool              `json:"error"`
	Coefficient int               `json:"coefficient,omitempty"`
	Species     string            `json:"species,omitempty"`
	State       string            `json:"state,omitempty"`
	Charge      string            `json:"charge,omitempty"`
	Atoms       map[string]string `json:"atoms,omitempty"`
}

// SideView is an expression with its totals. MassNumber and AtomicNumber
// are set only for nuclear sides without error terms.
type SideView struct {
	Text         string            `json:"text"`
	Terms        []TermView        `json:"terms"`
	Charge       string            `json:"charge"`
	Atoms        map[string]string `json:"atoms"`
	MassNumber   *int              `json:"mass_number,omitempty"`
	AtomicNumber *int              `json:"atomic_number,omitempty"`
}

// ParseIssue reports a term that failed to parse.
type ParseIssue struct {
	Side    string `json:"side,omitempty"`
	Index   int    `json:"index"`
	Offset  int    `json:"offset"`
	Text    string `json:"text"`
	Message string `json:"message"`
}

// BalanceFlags lists the balance checks that apply to the statement kind.
type BalanceFlags struct {
	Balanced           bool  `json:"balanced"`
	Atoms              *bool `json:"atoms,omitempty"`
	Charge             *bool `json:"charge,omitempty"`
	MassNumber         *bool `json:"mass_number,omitempty"`
	AtomicNumber       *bool `json:"atomic_number,omitempty"`
	ValidAtomicNumbers *bool `json:"valid_atomic_numbers,omitempty"`
}

// StatementView is the serialized form of a parsed statement.
type StatementView struct {
	Kind          StatementKind `json:"kind"`
	Input         string        `json:"input"`
	Normalized    string        `json:"normalized"`
	Rendered      string        `json:"rendered"`
	ContainsError bool          `json:"contains_error"`
	Arrow         string        `json:"arrow,omitempty"`
	Expression    *SideView     `json:"expression,omitempty"`
	Left          *SideView     `json:"left,omitempty"`
	Right         *SideView     `json:"right,omitempty"`
	Balance       *BalanceFlags `json:"balance,omitempty"`
	Issues        []ParseIssue  `json:"issues,omitempty"`
}

// ParseRequest carries one mhchem string.
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// CheckRequest compares a submitted answer against the expected one.
type CheckRequest struct {
	Target string `json:"target" binding:"required"`
	Test   string `json:"test" binding:"required"`
	// RequestID correlates asynchronous checks with their completion event.
	RequestID string `json:"request_id,omitempty"`
}

// CheckResultView is a verdict. WrongTerms holds rendered terms of the
// answer that do not belong to the expected statement.
type CheckResultView struct {
	SubmissionID     string   `json:"submission_id"`
	Accepted         bool     `json:"accepted"`
	Reason           string   `json:"reason"`
	Message          string   `json:"message"`
	WrongTerms       []string `json:"wrong_terms,omitempty"`
	Target           string   `json:"target"`
	Test             string   `json:"test"`
	WeaklyEquivalent bool     `json:"weakly_equivalent"`
	SameCoefficients bool     `json:"same_coefficients"`
	SameStates       bool     `json:"same_states"`
	SameArrow        bool     `json:"same_arrow"`
	Cached           bool     `json:"cached"`
}

// BalanceRequest asks for the smallest integer coefficients of an equation.
type BalanceRequest struct {
	Equation string `json:"equation" binding:"required"`
}

type BalanceView struct {
	Kind         StatementKind `json:"kind"`
	Input        string        `json:"input"`
	Balanced     string        `json:"balanced"`
	Coefficients []int64       `json:"coefficients"`
	WasBalanced  bool          `json:"was_balanced"`
}

// BatchCheckRequest checks many answers at once.
type BatchCheckRequest struct {
	Items   []CheckRequest `json:"items" binding:"required"`
	Archive bool           `json:"archive"`
}

type BatchItemView struct {
	Index  int                 `json:"index"`
	Result *CheckResultView    `json:"result,omitempty"`
	Error  *common.ErrorDetail `json:"error,omitempty"`
}

// BatchView summarizes a batch. ReportKey and ReportURL are set when the
// report was archived.
type BatchView struct {
	BatchID   string          `json:"batch_id"`
	Total     int             `json:"total"`
	Accepted  int             `json:"accepted"`
	Rejected  int             `json:"rejected"`
	Failed    int             `json:"failed"`
	Items     []BatchItemView `json:"items"`
	ReportKey string          `json:"report_key,omitempty"`
	ReportURL string          `json:"report_url,omitempty"`
}

// SubmissionView is a stored check.
type SubmissionView struct {
	ID         string    `json:"id"`
	Target     string    `json:"target"`
	Test       string    `json:"test"`
	Accepted   bool      `json:"accepted"`
	Reason     string    `json:"reason"`
	WrongTerms []string  `json:"wrong_terms"`
	CreatedAt  time.Time `json:"created_at"`
}

// SubmissionStats counts stored checks per verdict reason.
type SubmissionStats struct {
	Total    int64            `json:"total"`
	ByReason map[string]int64 `json:"by_reason"`
}

// CheckRequestedEvent asks the worker to check an answer.
type CheckRequestedEvent struct {
	RequestID string `json:"request_id"`
	Target    string `json:"target"`
	Test      string `json:"test"`
}

// CheckCompletedEvent is published after every check.
type CheckCompletedEvent struct {
	RequestID    string   `json:"request_id,omitempty"`
	SubmissionID string   `json:"submission_id"`
	Accepted     bool     `json:"accepted"`
	Reason       string   `json:"reason"`
	WrongTerms   []string `json:"wrong_terms,omitempty"`
}
