package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/internal/inventory"
	"github.com/satriaputra/tokopos-backend/internal/transactions"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/gateway"
	"github.com/satriaputra/tokopos-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gatewayStatusClient interface {
	GetStatus(ctx context.Context, orderID string) (*gateway.StatusResult, error)
}

// Service owns every status mutation after a transaction is created. All
// paths converge on the same conditional claim, so webhooks, manual
// overrides, polling, and the expiry sweep can race freely: exactly one
// writer wins and everyone else observes the settled row.
type Service interface {
	GetStatus(ctx context.Context, storeID, id uuid.UUID) (*transactions.TransactionDTO, error)
	UpdateStatus(ctx context.Context, storeID, id uuid.UUID, target enums.TransactionStatus, source enums.CompletionSource) (*transactions.TransactionDTO, error)
	HandleGatewayNotification(ctx context.Context, orderID, rawStatus string) error
	Sync(ctx context.Context, storeID, id uuid.UUID) (*transactions.TransactionDTO, error)
	ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

type service struct {
	tx      txRunner
	repo    transactions.Repository
	gateway gatewayStatusClient
	logger  *logger.Logger
}

// NewService builds the reconciliation service. The gateway client is
// optional; without it Sync reports a dependency error.
func NewService(tx txRunner, repo transactions.Repository, gatewayClient gatewayStatusClient, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		gateway: gatewayClient,
		logger:  logg,
	}, nil
}

func (s *service) GetStatus(ctx context.Context, storeID, id uuid.UUID) (*transactions.TransactionDTO, error) {
	txn, err := s.loadScoped(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	return transactions.FromModel(txn), nil
}

func (s *service) UpdateStatus(ctx context.Context, storeID, id uuid.UUID, target enums.TransactionStatus, source enums.CompletionSource) (*transactions.TransactionDTO, error) {
	txn, err := s.loadScoped(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyTransition(ctx, txn, target, source); err != nil {
		return nil, err
	}
	return s.GetStatus(ctx, storeID, id)
}

// HandleGatewayNotification processes one webhook delivery. Lookups are by
// transaction ID alone because the gateway does not know tenants. Statuses
// that do not map to a terminal state are acknowledged and dropped, which
// also swallows duplicate deliveries of states already applied.
func (s *service) HandleGatewayNotification(ctx context.Context, orderID, rawStatus string) error {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is not a transaction id")
	}

	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return err
	}

	target := gateway.SettledStatus(rawStatus)
	if !target.IsTerminal() {
		ctx = s.logger.WithTransactionID(ctx, id.String())
		s.logger.Info(ctx, fmt.Sprintf("ignoring non-terminal gateway status %q", rawStatus))
		return nil
	}

	return s.applyTransition(ctx, txn, target, enums.CompletionSourceGateway)
}

// Sync polls the gateway for a pending transaction and applies the result.
// Useful when the shopper closed the payment popup and no webhook arrived.
func (s *service) Sync(ctx context.Context, storeID, id uuid.UUID) (*transactions.TransactionDTO, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured")
	}

	txn, err := s.loadScoped(ctx, storeID, id)
	if err != nil {
		return nil, err
	}
	if !txn.PaymentMethod.IsGateway() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is not gateway-backed")
	}
	if txn.Status.IsTerminal() {
		return transactions.FromModel(txn), nil
	}

	result, err := s.gateway.GetStatus(ctx, id.String())
	if err != nil {
		return nil, err
	}

	target := gateway.SettledStatus(result.RawStatus)
	if !target.IsTerminal() {
		return transactions.FromModel(txn), nil
	}

	if err := s.applyTransition(ctx, txn, target, enums.CompletionSourceGateway); err != nil {
		return nil, err
	}
	return s.GetStatus(ctx, storeID, id)
}

// ExpirePending sweeps pending transactions whose payment session lapsed
// before the cutoff and marks them expired. Each row goes through the same
// conditional claim, so a settlement landing mid-sweep always wins.
func (s *service) ExpirePending(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}

	stale, err := s.repo.FindExpiredPending(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		err := s.applyTransition(ctx, &stale[i], enums.TransactionStatusExpired, enums.CompletionSourceGateway)
		if err != nil {
			var typed *pkgerrors.Error
			if errors.As(err, &typed) && typed.Code() == pkgerrors.CodeStateConflict {
				// Lost the race to a real settlement.
				continue
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// applyTransition is the single writer for status changes. Re-delivery of
// the state already applied reports success; any other transition out of a
// terminal state is a state conflict.
func (s *service) applyTransition(ctx context.Context, txn *models.Transaction, target enums.TransactionStatus, source enums.CompletionSource) error {
	if txn.Status == target {
		return nil
	}
	if txn.Status.IsTerminal() {
		return pkgerrors.AlreadyFinalized(txn.Status.String())
	}
	if !target.IsTerminal() {
		return pkgerrors.InvalidTransition(txn.Status.String(), target.String())
	}

	ctx = s.logger.WithTransactionID(ctx, txn.ID.String())

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		claimed, err := repo.ClaimPending(ctx, transactions.StatusClaim{
			ID:     txn.ID,
			Target: target,
			Source: source,
			At:     time.Now().UTC(),
		})
		if err != nil {
			return err
		}
		if !claimed {
			// Someone else finalized first. Re-read to decide whether the
			// outcome matches, which keeps duplicate deliveries silent.
			current, err := repo.FindByID(ctx, txn.ID)
			if err != nil {
				return err
			}
			if current.Status == target {
				return nil
			}
			return pkgerrors.AlreadyFinalized(current.Status.String())
		}

		if target == enums.TransactionStatusCompleted {
			if err := s.decrementStock(ctx, tx, txn); err != nil {
				return err
			}
		}

		s.logger.Info(ctx, fmt.Sprintf("transaction settled as %s", target))
		return nil
	})
}

// decrementStock takes inventory for a settling gateway transaction inside
// the claim's transaction, so stock moves exactly once and only when the
// claim wins.
func (s *service) decrementStock(ctx context.Context, tx *gorm.DB, txn *models.Transaction) error {
	items := txn.Items
	if len(items) == 0 {
		loaded, err := s.repo.WithTx(tx).FindByID(ctx, txn.ID)
		if err != nil {
			return err
		}
		items = loaded.Items
	}

	requests := make([]inventory.DecrementRequest, 0, len(items))
	for _, item := range items {
		requests = append(requests, inventory.DecrementRequest{
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}
	return inventory.Decrement(ctx, tx, txn.StoreID, requests)
}

func (s *service) loadScoped(ctx context.Context, storeID, id uuid.UUID) (*models.Transaction, error) {
	if storeID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and transaction id required")
	}
	txn, err := s.repo.FindByIDAndStore(ctx, id, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, err
	}
	return txn, nil
}
