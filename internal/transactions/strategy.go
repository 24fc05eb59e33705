package transactions

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/internal/inventory"
	"github.com/satriaputra/tokopos-backend/internal/money"
	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
	pkgerrors "github.com/satriaputra/tokopos-backend/pkg/errors"
	"github.com/satriaputra/tokopos-backend/pkg/gateway"
)

// paymentStrategy settles one payment method. Begin runs before the database
// transaction opens and shapes the header (status, paid amount, gateway
// session). Settle runs inside the database transaction after the header and
// items are written.
type paymentStrategy interface {
	Begin(ctx context.Context, txn *models.Transaction, input CheckoutInput) error
	Settle(ctx context.Context, dbtx *gorm.DB, txn *models.Transaction) error
}

type gatewaySessions interface {
	CreateSession(ctx context.Context, params gateway.SessionParams) (*gateway.Session, error)
	SessionTTL() time.Duration
}

// resolveStrategy picks the settlement path for the payment method. Cash
// settles at the register; every gateway-backed method opens a hosted
// session and settles later through reconciliation.
func resolveStrategy(method enums.PaymentMethod, sessions gatewaySessions) (paymentStrategy, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if method.IsGateway() {
		if sessions == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured")
		}
		return &gatewayStrategy{sessions: sessions}, nil
	}
	return &cashStrategy{}, nil
}

// cashStrategy settles immediately: the transaction is born completed and
// stock is taken in the same database transaction that persists it.
type cashStrategy struct{}

func (s *cashStrategy) Begin(_ context.Context, txn *models.Transaction, input CheckoutInput) error {
	change, err := money.Change(input.PaidCents, txn.TotalCents)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	source := enums.CompletionSourceRegister

	txn.Status = enums.TransactionStatusCompleted
	txn.PaidCents = input.PaidCents
	txn.ChangeCents = change
	txn.CompletionSource = &source
	txn.CompletedAt = &now
	return nil
}

func (s *cashStrategy) Settle(ctx context.Context, dbtx *gorm.DB, txn *models.Transaction) error {
	requests := make([]inventory.DecrementRequest, 0, len(txn.Items))
	for _, item := range txn.Items {
		requests = append(requests, inventory.DecrementRequest{
			ProductID: item.ProductID,
			Qty:       item.Qty,
		})
	}
	return inventory.Decrement(ctx, dbtx, txn.StoreID, requests)
}

// gatewayStrategy leaves the transaction pending and opens a hosted payment
// session under the transaction's ID. Stock is not touched until the
// reconciliation service confirms settlement.
type gatewayStrategy struct {
	sessions gatewaySessions
}

func (s *gatewayStrategy) Begin(ctx context.Context, txn *models.Transaction, _ CheckoutInput) error {
	expiresAt := time.Now().UTC().Add(s.sessions.SessionTTL())
	session, err := s.sessions.CreateSession(ctx, gateway.SessionParams{
		OrderID:          txn.ID.String(),
		GrossAmountCents: txn.TotalCents,
		PaymentMethod:    txn.PaymentMethod,
		ExpiresAt:        expiresAt,
	})
	if err != nil {
		return err
	}

	txn.Status = enums.TransactionStatusPending
	txn.PaidCents = 0
	txn.ChangeCents = 0
	txn.GatewayToken = &session.Token
	txn.GatewayRedirectURL = &session.RedirectURL
	sessionExpiry := session.ExpiresAt
	txn.GatewayExpiresAt = &sessionExpiry
	return nil
}

func (s *gatewayStrategy) Settle(context.Context, *gorm.DB, *models.Transaction) error {
	return nil
}
