package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govbilling/billdash/internal/mutation"
	"github.com/govbilling/billdash/internal/platform/httpx"
	"github.com/govbilling/billdash/internal/records"
	"github.com/govbilling/billdash/internal/store"
)

type fakeGateway struct {
	mu        sync.Mutex
	items     []*records.Record
	fetchErr  error
	submitErr error
	fetches   int
	submitted []mutation.Submission

	invalidateErr error
	invalidations int
}

func (f *fakeGateway) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	return f.invalidateErr
}

func (f *fakeGateway) FetchBillingItems(context.Context) ([]*records.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.items, nil
}

func (f *fakeGateway) SubmitBillingUpdate(_ context.Context, sub mutation.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, sub)
	return nil
}

func fixtures() []*records.Record {
	return []*records.Record{
		{ID: "1", BillID: "B-1", Center: "North", Source: "State", Component: "Seeds", Investment: "Capital", Scheme: "S1",
			AllocatedQuantity: 20, UpdatedQuantity: 5, Rate: 2, SourceOfReceipt: &records.Receipt{UserID: "U-STATE"}},
		{ID: "2", Center: "North", Source: "Central", Component: "Tools", Investment: "Revenue", Scheme: "S2",
			AllocatedQuantity: 30, UpdatedQuantity: 0, Rate: 1, SourceOfReceipt: &records.Receipt{UserID: "U-CENTRAL"}},
		{ID: "3", BillID: "B-3", Center: "South", Source: "State", Component: "Seeds", Investment: "Capital", Scheme: "S1",
			AllocatedQuantity: 10, UpdatedQuantity: 10, Rate: 3},
	}
}

func newService(t *testing.T, gw *fakeGateway, cfg Config) *Service {
	t.Helper()
	svc, err := NewService(gw, store.New(records.Key), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return svc
}

func loaded(t *testing.T, cfg Config) (*Service, *fakeGateway) {
	t.Helper()
	gw := &fakeGateway{items: fixtures()}
	svc := newService(t, gw, cfg)
	require.NoError(t, svc.Refresh(context.Background()))
	return svc, gw
}

func TestItemsBeforeLoadIsUnavailable(t *testing.T) {
	svc := newService(t, &fakeGateway{}, Config{})
	_, err := svc.Items(1, 0)
	assert.ErrorIs(t, err, httpx.ErrUnavailable)
	_, err = svc.SetCut("1", "1")
	assert.ErrorIs(t, err, httpx.ErrUnavailable)
}

func TestRefreshFailureKeepsStoreEmpty(t *testing.T) {
	gw := &fakeGateway{fetchErr: errors.New("down")}
	svc := newService(t, gw, Config{})
	require.Error(t, svc.Refresh(context.Background()))
	assert.False(t, svc.store.Loaded())
}

func TestItemsFilteredPagedAndTotalled(t *testing.T) {
	svc, _ := loaded(t, Config{PageSize: 1, Strict: true})
	require.NoError(t, svc.Page().Set(records.DimCenter, "North"))
	_, err := svc.SetCut("1", "4")
	require.NoError(t, err)

	view, err := svc.Items(1, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "1", view.Items[0].ID)
	assert.Equal(t, 4.0, view.Items[0].CutQuantity)
	assert.Equal(t, 11.0, view.Items[0].Remaining)
	assert.Equal(t, 2, view.Pagination.TotalPages)

	assert.Equal(t, 2, view.Totals.Count)
	assert.Equal(t, 50.0, view.Totals.Allocated)
	assert.Equal(t, 4.0, view.Totals.Cut)
	assert.Equal(t, 8.0, view.Totals.CutValue)
	assert.Equal(t, 1, view.Dirty)
}

func TestSetCutRejectsOverMax(t *testing.T) {
	svc, _ := loaded(t, Config{})
	_, err := svc.SetCut("1", "16")
	var ve *mutation.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, 15.0, ve.Max)

	_, err = svc.SetCut("404", "1")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestSubmitUsesSelectedSourceUser(t *testing.T) {
	svc, gw := loaded(t, Config{})
	require.NoError(t, svc.Page().Set(records.DimCenter, "North"))
	require.NoError(t, svc.Page().Set(records.DimSource, "Central"))
	_, err := svc.SetCut("1", "5")
	require.NoError(t, err)
	_, err = svc.SetCut("2", "0.35")
	require.NoError(t, err)

	res, err := svc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Submitted)
	assert.True(t, res.Reloaded)

	require.Len(t, gw.submitted, 1)
	assert.Equal(t, mutation.Submission{
		UserID:        "U-CENTRAL",
		MultipleBills: [][2]string{{"B-1", "10"}, {"2", "0.35"}},
	}, gw.submitted[0])
	assert.Empty(t, svc.Pending())
	assert.Equal(t, 2, gw.fetches)
}

func TestSubmitFallsBackToFirstDirtyUser(t *testing.T) {
	svc, gw := loaded(t, Config{})
	_, err := svc.SetCut("2", "1")
	require.NoError(t, err)
	_, err = svc.SetCut("1", "1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "U-CENTRAL", gw.submitted[0].UserID)
}

func TestSubmitWithoutResolvableUser(t *testing.T) {
	gw := &fakeGateway{items: []*records.Record{{ID: "9", AllocatedQuantity: 5}}}
	svc := newService(t, gw, Config{})
	require.NoError(t, svc.Refresh(context.Background()))
	_, err := svc.SetCut("9", "1")
	require.NoError(t, err)

	_, err = svc.Submit(context.Background())
	assert.ErrorIs(t, err, mutation.ErrNoSubmitter)

	svc.cfg.FallbackUserID = "U-FALLBACK"
	_, err = svc.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "U-FALLBACK", gw.submitted[0].UserID)
}

func TestSubmitFailurePreservesEdits(t *testing.T) {
	svc, gw := loaded(t, Config{})
	_, err := svc.SetCut("1", "2")
	require.NoError(t, err)
	gw.submitErr = errors.New("boom")

	_, err = svc.Submit(context.Background())
	require.Error(t, err)
	assert.Len(t, svc.Pending(), 1)
	assert.Equal(t, 2.0, svc.tracker.Cut("1"))
}

func TestSubmitSucceedsWhenReloadFails(t *testing.T) {
	svc, gw := loaded(t, Config{})
	_, err := svc.SetCut("1", "2")
	require.NoError(t, err)
	gw.fetchErr = errors.New("down")

	res, err := svc.Submit(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Reloaded)
	assert.Empty(t, svc.Pending())
}

func TestResetCuts(t *testing.T) {
	svc, _ := loaded(t, Config{})
	_, err := svc.SetCut("1", "2")
	require.NoError(t, err)
	svc.ResetCuts()
	_, err = svc.Preview()
	assert.ErrorIs(t, err, mutation.ErrNothingToSubmit)
}

func TestForceRefreshInvalidatesFirst(t *testing.T) {
	svc, gw := loaded(t, Config{})
	require.NoError(t, svc.ForceRefresh(context.Background()))
	assert.Equal(t, 1, gw.invalidations)
	assert.Equal(t, 2, gw.fetches)

	gw.invalidateErr = errors.New("redis down")
	require.NoError(t, svc.ForceRefresh(context.Background()))
	assert.Equal(t, 3, gw.fetches)
}
