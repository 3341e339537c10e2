package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/govbilling/billdash/internal/jobs"
	"github.com/govbilling/billdash/internal/nursery"
	"github.com/govbilling/billdash/internal/records"
)

type fakeSource struct {
	calls    []string
	fetchErr error
}

func (f *fakeSource) Invalidate(context.Context) error {
	f.calls = append(f.calls, "invalidate")
	return nil
}

func (f *fakeSource) FetchBillingItems(context.Context) ([]*records.Record, error) {
	f.calls = append(f.calls, "billing")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return []*records.Record{{ID: "1"}, {ID: "2"}}, nil
}

func (f *fakeSource) ListNurseryEntries(_ context.Context, q nursery.ListQuery) ([]*nursery.Entry, error) {
	f.calls = append(f.calls, "nursery")
	return []*nursery.Entry{{ID: "n1"}}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWarmBillingInvalidatesThenFetches(t *testing.T) {
	src := &fakeSource{}
	job := NewWarmJob(src, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewWarmTask(TaskWarmBilling, true)
	require.NoError(t, err)
	require.NoError(t, job.HandleBilling(context.Background(), task))
	assert.Equal(t, []string{"invalidate", "billing"}, src.calls)

	task, err = NewWarmTask(TaskWarmNursery, false)
	require.NoError(t, err)
	require.NoError(t, job.HandleNursery(context.Background(), task))
	assert.Equal(t, []string{"invalidate", "billing", "nursery"}, src.calls)
}

func TestWarmPropagatesFetchError(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("down")}
	job := NewWarmJob(src, quietLogger(), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	assert.Error(t, job.HandleBilling(context.Background(), asynq.NewTask(TaskWarmBilling, nil)))
}

func TestWarmRejectsBadPayload(t *testing.T) {
	job := NewWarmJob(&fakeSource{}, quietLogger(), nil)
	err := job.HandleBilling(context.Background(), asynq.NewTask(TaskWarmBilling, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

type fakeEnqueuer struct {
	taskType   string
	invalidate bool
	err        error
}

func (f *fakeEnqueuer) EnqueueWarm(_ context.Context, taskType string, invalidate bool) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.taskType, f.invalidate = taskType, invalidate
	return &asynq.TaskInfo{ID: "t-1", Queue: QueueDefault}, nil
}

func TestHandlerRoutes(t *testing.T) {
	enq := &fakeEnqueuer{}
	r := chi.NewRouter()
	NewHandler(nil, enq, quietLogger()).MountRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"queue":"default","pending":0,"active":0,"retry":0}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/warm?target=nursery&invalidate=true", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "t-1", body["id"])
	assert.Equal(t, TaskWarmNursery, enq.taskType)
	assert.True(t, enq.invalidate)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/warm?target=ledger", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	enq.err = asynq.ErrDuplicateTask
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/warm", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandlerWithoutQueue(t *testing.T) {
	r := chi.NewRouter()
	NewHandler(nil, nil, nil).MountRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/warm", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
