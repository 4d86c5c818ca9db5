package repositories

import (
	"context"
	"errors"
	"fmt"

	"donare/internal/models"

	"gorm.io/gorm"
)

// ErrDetailNotFound is returned when no schedule detail matches a
// continuation lookup.
var ErrDetailNotFound = errors.New("schedule detail not found")

// TransactionRepository persists the per-checkout records: the header row,
// one detail row per line, the card suffix, and the optional employer
// match. All schedule mutations are parameter-bound.
type TransactionRepository interface {
	InsertTransaction(ctx context.Context, tx *models.Transaction) (uint, error)
	InsertDetail(ctx context.Context, detail *models.ScheduleDetail) (uint, error)
	InsertCard(ctx context.Context, card *models.CardRecord) error
	InsertEmployerMatch(ctx context.Context, match *models.EmployerMatch) error

	FindMatch(ctx context.Context, amount float64, quantity, frequencyCode int, amountID, appealID string) (*models.ScheduleDetail, error)
	DecrementRemaining(ctx context.Context, detailID uint) error
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) InsertTransaction(ctx context.Context, tx *models.Transaction) (uint, error) {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return 0, fmt.Errorf("transaction insert failed: %w", err)
	}
	return tx.ID, nil
}

func (r *transactionRepository) InsertDetail(ctx context.Context, detail *models.ScheduleDetail) (uint, error) {
	if err := r.db.WithContext(ctx).Create(detail).Error; err != nil {
		return 0, fmt.Errorf("transaction detail insert failed: %w", err)
	}
	return detail.ID, nil
}

func (r *transactionRepository) InsertCard(ctx context.Context, card *models.CardRecord) error {
	if err := r.db.WithContext(ctx).Create(card).Error; err != nil {
		return fmt.Errorf("card record insert failed: %w", err)
	}
	return nil
}

func (r *transactionRepository) InsertEmployerMatch(ctx context.Context, match *models.EmployerMatch) error {
	if err := r.db.WithContext(ctx).Create(match).Error; err != nil {
		return fmt.Errorf("employer match insert failed: %w", err)
	}
	return nil
}

// FindMatch locates the detail row a continuation cycle belongs to.
// Duplicates should not occur under correct prior operation; the first row
// by insertion order wins if they do.
func (r *transactionRepository) FindMatch(ctx context.Context, amount float64, quantity, frequencyCode int, amountID, appealID string) (*models.ScheduleDetail, error) {
	var detail models.ScheduleDetail
	err := r.db.WithContext(ctx).
		Where("amount = ? AND quantity = ? AND frequency_code = ? AND amount_id = ? AND appeal_id = ?",
			amount, quantity, frequencyCode, amountID, appealID).
		Order("id ASC").
		First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("schedule detail lookup failed: %w", err)
	}
	return &detail, nil
}

func (r *transactionRepository) DecrementRemaining(ctx context.Context, detailID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.ScheduleDetail{}).
		Where("id = ? AND remaining_iterations > 0", detailID).
		UpdateColumn("remaining_iterations", gorm.Expr("remaining_iterations - 1"))
	if result.Error != nil {
		return fmt.Errorf("schedule detail update failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrDetailNotFound
	}
	return nil
}
