// Package mutation tracks pending cut quantities entered on the billing page
// and turns them into the update payload sent to the billing API.
package mutation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/records"
)

var (
	// ErrUnknownRecord is returned when a cut targets a record not in the store.
	ErrUnknownRecord = fmt.Errorf("mutation: record not found: %w", httpx.ErrNotFound)
	// ErrNoSubmitter is returned when no user id can be resolved for a submission.
	ErrNoSubmitter = fmt.Errorf("mutation: no receiving user for submission: %w", httpx.ErrValidation)
	// ErrNothingToSubmit is returned when no dirty record carries a positive cut.
	ErrNothingToSubmit = fmt.Errorf("mutation: no pending cuts: %w", httpx.ErrValidation)
)

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ValidationError reports a cut that exceeds what the record has left.
type ValidationError struct {
	RecordID string
	Value    float64
	Max      float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("cut quantity %s for record %s exceeds the maximum allowed %s",
		formatQuantity(e.Value), e.RecordID, formatQuantity(e.Max))
}

// Unwrap maps the error onto the validation sentinel.
func (e *ValidationError) Unwrap() error {
	return httpx.ErrValidation
}

// Lookup resolves records by id.
type Lookup interface {
	Find(id string) (*records.Record, bool)
}

// Entry is one pending edit.
type Entry struct {
	RecordID string  `json:"record_id"`
	Cut      float64 `json:"cut_quantity"`
}

// Submission is the body of the update-billing-item call.
type Submission struct {
	UserID        string      `json:"user_id"`
	MultipleBills [][2]string `json:"multiple_bills"`
}

// Tracker holds the cuts entered this session, keyed by record id.
type Tracker struct {
	mu     sync.RWMutex
	lookup Lookup
	cuts   map[string]float64
	order  []string
}

// NewTracker constructs an empty tracker.
func NewTracker(lookup Lookup) *Tracker {
	return &Tracker{lookup: lookup, cuts: map[string]float64{}}
}

// ParseCut reads the leading number of raw; anything unreadable or negative is zero.
func ParseCut(raw string) float64 {
	match := leadingNumber.FindString(strings.TrimSpace(raw))
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// SetCut validates and stores a pending cut. On rejection the previous cut stays.
func (t *Tracker) SetCut(id, raw string) (float64, error) {
	rec, ok := t.lookup.Find(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}
	cut := ParseCut(raw)
	if maxCut := rec.MaxCut(); cut > maxCut {
		return 0, &ValidationError{RecordID: id, Value: cut, Max: maxCut}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, seen := t.cuts[id]; !seen {
		t.order = append(t.order, id)
	}
	t.cuts[id] = cut
	return cut, nil
}

// Cut returns the pending cut of a record, zero when untouched.
func (t *Tracker) Cut(id string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cuts[id]
}

// Dirty lists the touched records in first-edit order.
func (t *Tracker) Dirty() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, Entry{RecordID: id, Cut: t.cuts[id]})
	}
	return out
}

// Reset discards every pending edit.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cuts = map[string]float64{}
	t.order = nil
}

// FirstDirtyUserID returns the receiving user of the first touched record.
func (t *Tracker) FirstDirtyUserID() string {
	for _, entry := range t.Dirty() {
		rec, ok := t.lookup.Find(entry.RecordID)
		if !ok {
			continue
		}
		if uid := rec.ReceiptUserID(); uid != "" {
			return uid
		}
	}
	return ""
}

// BuildSubmission emits the new absolute consumed totals of every dirty record
// with a positive cut.
func (t *Tracker) BuildSubmission(userID string) (Submission, error) {
	sub := Submission{UserID: userID, MultipleBills: [][2]string{}}
	for _, entry := range t.Dirty() {
		if entry.Cut <= 0 {
			continue
		}
		rec, ok := t.lookup.Find(entry.RecordID)
		if !ok {
			continue
		}
		total := decimal.NewFromFloat(rec.UpdatedQuantity).Add(decimal.NewFromFloat(entry.Cut))
		sub.MultipleBills = append(sub.MultipleBills, [2]string{rec.SubmissionID(), total.String()})
	}
	if len(sub.MultipleBills) == 0 {
		return Submission{}, ErrNothingToSubmit
	}
	if userID == "" {
		return Submission{}, ErrNoSubmitter
	}
	return sub, nil
}

// IsValidation reports whether err is a rejected cut.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func formatQuantity(v float64) string {
	return decimal.NewFromFloat(v).String()
}
