package cron

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/satriaputra/tokopos-backend/internal/transactions"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
)

type syncCall struct {
	storeID uuid.UUID
	id      uuid.UUID
}

type expireCall struct {
	cutoff time.Time
	limit  int
}

type fakeSweeper struct {
	syncCalls   []syncCall
	syncErrs    map[uuid.UUID]error
	expireCalls []expireCall
	expired     int
	expireErr   error
}

func (f *fakeSweeper) Sync(ctx context.Context, storeID, id uuid.UUID) (*transactions.TransactionDTO, error) {
	f.syncCalls = append(f.syncCalls, syncCall{storeID: storeID, id: id})
	if err, ok := f.syncErrs[id]; ok {
		return nil, err
	}
	return &transactions.TransactionDTO{ID: id, StoreID: storeID}, nil
}

func (f *fakeSweeper) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	f.expireCalls = append(f.expireCalls, expireCall{cutoff: cutoff, limit: limit})
	return f.expired, f.expireErr
}

type fakeLapsedReader struct {
	txns []models.Transaction
	err  error
}

func (f *fakeLapsedReader) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error) {
	return f.txns, f.err
}

func pendingTransaction(method enums.PaymentMethod) models.Transaction {
	return models.Transaction{
		ID:            uuid.New(),
		StoreID:       uuid.New(),
		Status:        enums.TransactionStatusPending,
		PaymentMethod: method,
	}
}

func newExpireJobTest(t *testing.T, reader *fakeLapsedReader, sweeper *fakeSweeper, now time.Time) *expirePendingJob {
	t.Helper()
	jobIface, err := NewExpirePendingJob(ExpirePendingJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Reconciler: sweeper,
		Lapsed:     reader,
		BatchSize:  50,
	})
	if err != nil {
		t.Fatalf("NewExpirePendingJob: %v", err)
	}
	job, ok := jobIface.(*expirePendingJob)
	if !ok {
		t.Fatalf("expected expirePendingJob, got %T", jobIface)
	}
	job.now = func() time.Time { return now }
	return job
}

func TestExpirePendingJobSyncsGatewayBeforeExpiring(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	gatewayTxn := pendingTransaction(enums.PaymentMethodBankTransfer)
	cashTxn := pendingTransaction(enums.PaymentMethodCash)
	reader := &fakeLapsedReader{txns: []models.Transaction{gatewayTxn, cashTxn}}
	sweeper := &fakeSweeper{expired: 1}
	job := newExpireJobTest(t, reader, sweeper, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sweeper.syncCalls) != 1 {
		t.Fatalf("expected 1 sync call, got %d", len(sweeper.syncCalls))
	}
	if sweeper.syncCalls[0].id != gatewayTxn.ID || sweeper.syncCalls[0].storeID != gatewayTxn.StoreID {
		t.Fatalf("sync called with wrong transaction")
	}
	if len(sweeper.expireCalls) != 1 {
		t.Fatalf("expected 1 expire call, got %d", len(sweeper.expireCalls))
	}
	call := sweeper.expireCalls[0]
	if !call.cutoff.Equal(now) {
		t.Fatalf("unexpected cutoff: %s", call.cutoff)
	}
	if call.limit != 50 {
		t.Fatalf("unexpected batch size: %d", call.limit)
	}
}

func TestExpirePendingJobSyncFailureDoesNotBlockExpiry(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	broken := pendingTransaction(enums.PaymentMethodVirtualAccount)
	reader := &fakeLapsedReader{txns: []models.Transaction{broken}}
	sweeper := &fakeSweeper{
		syncErrs: map[uuid.UUID]error{
			broken.ID: pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable"),
		},
	}
	job := newExpireJobTest(t, reader, sweeper, now)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected combined error")
	}
	if !strings.Contains(err.Error(), broken.ID.String()) {
		t.Fatalf("error should name failing transaction: %v", err)
	}
	if len(sweeper.expireCalls) != 1 {
		t.Fatalf("expected expiry sweep to run, got %d calls", len(sweeper.expireCalls))
	}
}

func TestExpirePendingJobSwallowsStateConflicts(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	settled := pendingTransaction(enums.PaymentMethodBankTransfer)
	reader := &fakeLapsedReader{txns: []models.Transaction{settled}}
	sweeper := &fakeSweeper{
		syncErrs: map[uuid.UUID]error{
			settled.ID: pkgerrors.AlreadyFinalized("completed"),
		},
	}
	job := newExpireJobTest(t, reader, sweeper, now)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("state conflicts should be skipped: %v", err)
	}
}

func TestExpirePendingJobReaderFailure(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	reader := &fakeLapsedReader{err: errors.New("db down")}
	sweeper := &fakeSweeper{}
	job := newExpireJobTest(t, reader, sweeper, now)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from reader")
	}
	if len(sweeper.expireCalls) != 1 {
		t.Fatalf("expiry sweep should still run, got %d calls", len(sweeper.expireCalls))
	}
}
