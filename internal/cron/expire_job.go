package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/satriaputra/tokopos-backend/internal/transactions"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
)

const defaultSweepBatchSize = 100

// ExpirePendingJobParams configure the pending-transaction sweep.
type ExpirePendingJobParams struct {
	Logger     *logger.Logger
	Reconciler settlementSweeper
	Lapsed     lapsedReader
	BatchSize  int
}

type settlementSweeper interface {
	Sync(ctx context.Context, storeID, id uuid.UUID) (*transactions.TransactionDTO, error)
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type lapsedReader interface {
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error)
}

// NewExpirePendingJob builds the cron job that settles or expires lapsed
// pending transactions.
func NewExpirePendingJob(params ExpirePendingJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconcile service required")
	}
	if params.Lapsed == nil {
		return nil, fmt.Errorf("lapsed transactions reader required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &expirePendingJob{
		logg:       params.Logger,
		reconciler: params.Reconciler,
		lapsed:     params.Lapsed,
		batchSize:  batchSize,
		now:        time.Now,
	}, nil
}

type expirePendingJob struct {
	logg       *logger.Logger
	reconciler settlementSweeper
	lapsed     lapsedReader
	batchSize  int
	now        func() time.Time
}

func (j *expirePendingJob) Name() string { return "expire-pending" }

// Run first re-syncs lapsed gateway transactions against the gateway, so a
// settlement whose webhook never arrived is completed rather than expired,
// then expires whatever is still pending.
func (j *expirePendingJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	var errs []error
	if err := j.syncLapsedGateway(ctx, cutoff); err != nil {
		errs = append(errs, err)
	}
	if err := j.expireStale(ctx, cutoff); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *expirePendingJob) syncLapsedGateway(ctx context.Context, cutoff time.Time) error {
	lapsed, err := j.lapsed.FindExpiredPending(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("query lapsed transactions for sync: %w", err)
	}
	var errs error
	synced := 0
	for _, txn := range lapsed {
		if !txn.PaymentMethod.IsGateway() {
			continue
		}
		if _, err := j.reconciler.Sync(ctx, txn.StoreID, txn.ID); err != nil {
			if isStateConflict(err) {
				// Settled concurrently; the expiry pass will skip it too.
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("sync transaction %s: %w", txn.ID, err))
			continue
		}
		synced++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": synced})
	j.logg.Info(logCtx, "gateway sync loop complete")
	return errs
}

func (j *expirePendingJob) expireStale(ctx context.Context, cutoff time.Time) error {
	expired, err := j.reconciler.ExpirePending(ctx, cutoff, j.batchSize)
	if err != nil {
		return fmt.Errorf("expire pending transactions: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": expired})
	j.logg.Info(logCtx, "expiration loop complete")
	return nil
}

func isStateConflict(err error) bool {
	var typed *pkgerrors.Error
	return errors.As(err, &typed) && typed.Code() == pkgerrors.CodeStateConflict
}
