package mutation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/records"
)

type mapLookup map[string]*records.Record

func (m mapLookup) Find(id string) (*records.Record, bool) {
	r, ok := m[id]
	return r, ok
}

func newLookup() mapLookup {
	return mapLookup{
		"1": {ID: "1", BillID: "B-1", AllocatedQuantity: 20, UpdatedQuantity: 10, SourceOfReceipt: &records.Receipt{UserID: "USR-7"}},
		"2": {ID: "2", AllocatedQuantity: 8.5, UpdatedQuantity: 0.25},
		"3": {ID: "3", BillID: "B-3", AllocatedQuantity: 5, UpdatedQuantity: 5},
	}
}

func TestParseCut(t *testing.T) {
	cases := map[string]float64{
		"5":     5,
		" 2.5 ": 2.5,
		"-3":    0,
		"abc":   0,
		"":      0,
		"7kg":   7,
		".5":    0.5,
		"1e2":   100,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseCut(raw), raw)
	}
}

func TestSetCutRejectsAboveRemaining(t *testing.T) {
	tracker := NewTracker(newLookup())
	_, err := tracker.SetCut("1", "4")
	require.NoError(t, err)

	_, err = tracker.SetCut("1", "11")
	require.Error(t, err)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "1", ve.RecordID)
	assert.Equal(t, 10.0, ve.Max)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "10")

	assert.Equal(t, 4.0, tracker.Cut("1"), "rejected input leaves the prior cut")
}

func TestSetCutBoundIgnoresPriorCut(t *testing.T) {
	tracker := NewTracker(newLookup())
	_, err := tracker.SetCut("1", "9")
	require.NoError(t, err)
	cut, err := tracker.SetCut("1", "10")
	require.NoError(t, err)
	assert.Equal(t, 10.0, cut)

	rec, _ := newLookup().Find("1")
	enriched := records.Enrich(rec, tracker.Cut("1"))
	assert.GreaterOrEqual(t, enriched.Remaining, 0.0)
}

func TestSetCutUnknownRecord(t *testing.T) {
	tracker := NewTracker(newLookup())
	_, err := tracker.SetCut("404", "1")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
	assert.Empty(t, tracker.Dirty())
}

func TestBuildSubmissionUsesAbsoluteTotals(t *testing.T) {
	tracker := NewTracker(newLookup())
	_, err := tracker.SetCut("1", "5")
	require.NoError(t, err)
	_, err = tracker.SetCut("2", "0.1")
	require.NoError(t, err)
	_, err = tracker.SetCut("3", "0")
	require.NoError(t, err)

	sub, err := tracker.BuildSubmission("USR-7")
	require.NoError(t, err)
	assert.Equal(t, "USR-7", sub.UserID)
	assert.Equal(t, [][2]string{{"B-1", "15"}, {"2", "0.35"}}, sub.MultipleBills)
	assert.Len(t, tracker.Dirty(), 3)
}

func TestBuildSubmissionErrors(t *testing.T) {
	tracker := NewTracker(newLookup())
	_, err := tracker.BuildSubmission("USR-7")
	assert.ErrorIs(t, err, ErrNothingToSubmit)

	_, err = tracker.SetCut("1", "1")
	require.NoError(t, err)
	_, err = tracker.BuildSubmission("")
	assert.ErrorIs(t, err, ErrNoSubmitter)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestFirstDirtyUserIDAndReset(t *testing.T) {
	tracker := NewTracker(newLookup())
	_, err := tracker.SetCut("2", "1")
	require.NoError(t, err)
	_, err = tracker.SetCut("1", "1")
	require.NoError(t, err)
	assert.Equal(t, "USR-7", tracker.FirstDirtyUserID())

	tracker.Reset()
	assert.Empty(t, tracker.Dirty())
	assert.Equal(t, 0.0, tracker.Cut("1"))
	assert.Equal(t, "", tracker.FirstDirtyUserID())
}
