package transactions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satriaputra/tokopos-backend/pkg/db/models"
	"github.com/satriaputra/tokopos-backend/pkg/enums"
	"github.com/satriaputra/tokopos-backend/pkg/pagination"
)

// Repository persists transaction headers and their item snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	FindByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, storeID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Transaction, error)
	ClaimPending(ctx context.Context, claim StatusClaim) (bool, error)
	FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error)
}

// ListFilter narrows the transaction history query. Zero values mean no
// filtering on that dimension.
type ListFilter struct {
	Status        enums.TransactionStatus
	PaymentMethod enums.PaymentMethod
	From          *time.Time
	To            *time.Time
}

// StatusClaim is a conditional transition out of pending. The update only
// lands when the row is still pending, which linearizes racing settlements.
type StatusClaim struct {
	ID     uuid.UUID
	Target enums.TransactionStatus
	Source enums.CompletionSource
	At     time.Time
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to transaction operations.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create writes the header and every item snapshot in one insert batch. The
// caller is expected to run this inside a transaction so a partial write can
// never survive.
func (r *repository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn == nil {
		return fmt.Errorf("transaction is required")
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) FindByIDAndStore(ctx context.Context, id, storeID uuid.UUID) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND store_id = ?", id, storeID).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) List(ctx context.Context, storeID uuid.UUID, filter ListFilter, limit int, cursor *pagination.Cursor) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentMethod != "" {
		query = query.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", filter.To)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var txns []models.Transaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) ClaimPending(ctx context.Context, claim StatusClaim) (bool, error) {
	if claim.ID == uuid.Nil {
		return false, fmt.Errorf("transaction id is required")
	}
	if !claim.Target.IsTerminal() {
		return false, fmt.Errorf("claim target %q is not terminal", claim.Target)
	}

	at := claim.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	updates := map[string]any{
		"status":     claim.Target,
		"updated_at": at,
	}
	switch claim.Target {
	case enums.TransactionStatusCompleted:
		updates["completed_at"] = at
		updates["completion_source"] = claim.Source
	case enums.TransactionStatusCancelled:
		updates["cancelled_at"] = at
	case enums.TransactionStatusExpired:
		updates["expired_at"] = at
	}

	result := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", claim.ID, enums.TransactionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// FindExpiredPending returns pending gateway transactions whose payment
// session lapsed before the cutoff.
func (r *repository) FindExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("status = ? AND gateway_expires_at IS NOT NULL AND gateway_expires_at < ?",
			enums.TransactionStatusPending, cutoff).
		Order("gateway_expires_at ASC").
		Limit(limit).
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
