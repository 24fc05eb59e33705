package cron

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/satriaputra/tokopos-backend/internal/transactions"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
)

type noopSweeper struct{}

func (noopSweeper) Sync(_ context.Context, _, id uuid.UUID) (*transactions.TransactionDTO, error) {
	return &transactions.TransactionDTO{ID: id}, nil
}

func (noopSweeper) ExpirePending(context.Context, time.Time, int) (int, error) {
	return 0, nil
}

type noopLapsedReader struct{}

func (noopLapsedReader) FindExpiredPending(context.Context, time.Time, int) ([]models.Transaction, error) {
	return nil, nil
}

func newSweepJob(t *testing.T) Job {
	t.Helper()
	job, err := NewExpirePendingJob(ExpirePendingJobParams{
		Logger:     logger.New(logger.Options{Level: zerolog.Disabled, Output: io.Discard}),
		Reconciler: noopSweeper{},
		Lapsed:     noopLapsedReader{},
	})
	if err != nil {
		t.Fatalf("build sweep job: %v", err)
	}
	return job
}

func TestRegistryPreloadsJobs(t *testing.T) {
	t.Parallel()

	sweep := newSweepJob(t)
	registry := NewRegistry(sweep, nil)

	jobs := registry.Jobs()
	if len(jobs) != 1 {
		t.Fatalf("expected nil jobs to be dropped, got %d jobs", len(jobs))
	}
	if jobs[0].Name() != "expire-pending" {
		t.Fatalf("unexpected job %q", jobs[0].Name())
	}
}

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	t.Parallel()

	first := newSweepJob(t)
	second := newSweepJob(t)
	registry := NewRegistry()
	registry.Register(first)
	registry.Register(nil)
	registry.Register(second)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != first || jobs[1] != second {
		t.Fatalf("jobs returned out of registration order")
	}

	// The returned slice is a copy; mutating it must not reach the registry.
	jobs[0] = nil
	if registry.Jobs()[0] != first {
		t.Fatalf("registry exposed its internal slice")
	}
}
