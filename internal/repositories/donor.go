package repositories

import (
	"context"
	"errors"
	"fmt"
	"log"

	"donare/internal/models"
	"donare/internal/repositories/cache"

	"gorm.io/gorm"
)

// ErrDonorNotFound is returned when no donor matches an (email, last name)
// lookup.
var ErrDonorNotFound = errors.New("donor not found")

// DonorRepository is the narrow donor surface the checkout flow needs.
// Lookup-then-create is intentionally not guarded by a unique constraint;
// concurrent first-time checkouts for the same donor can race and create
// duplicates.
type DonorRepository interface {
	FindByEmailAndLastName(ctx context.Context, email, lastName string) (*models.Donor, error)
	Create(ctx context.Context, donor *models.Donor) error
	UpdateCustomerRef(ctx context.Context, donorID uint, customerRef, fourDigit string) error
}

type donorRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

func NewDonorRepository(db *gorm.DB, cacheSvc *cache.CacheService) DonorRepository {
	return &donorRepository{db: db, cache: cacheSvc}
}

func (r *donorRepository) FindByEmailAndLastName(ctx context.Context, email, lastName string) (*models.Donor, error) {
	if r.cache != nil {
		if donor, found, err := r.cache.GetDonor(ctx, email, lastName); err == nil && found {
			return donor, nil
		}
	}

	var donor models.Donor
	err := r.db.WithContext(ctx).
		Where("email = ? AND last_name = ?", email, lastName).
		Order("id ASC").
		First(&donor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonorNotFound
		}
		return nil, fmt.Errorf("donor lookup failed: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.CacheDonor(ctx, &donor); err != nil {
			log.Printf("failed to cache donor %d: %v", donor.ID, err)
		}
	}
	return &donor, nil
}

func (r *donorRepository) Create(ctx context.Context, donor *models.Donor) error {
	if err := r.db.WithContext(ctx).Create(donor).Error; err != nil {
		return fmt.Errorf("donor creation failed: %w", err)
	}
	if r.cache != nil {
		if err := r.cache.CacheDonor(ctx, donor); err != nil {
			log.Printf("failed to cache donor %d: %v", donor.ID, err)
		}
	}
	return nil
}

func (r *donorRepository) UpdateCustomerRef(ctx context.Context, donorID uint, customerRef, fourDigit string) error {
	var donor models.Donor
	if err := r.db.WithContext(ctx).First(&donor, donorID).Error; err != nil {
		return fmt.Errorf("donor %d not found for update: %w", donorID, err)
	}

	err := r.db.WithContext(ctx).Model(&donor).
		Updates(map[string]interface{}{
			"customer_ref": customerRef,
			"four_digit":   fourDigit,
		}).Error
	if err != nil {
		return fmt.Errorf("donor update failed: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.InvalidateDonor(ctx, donor.Email, donor.LastName); err != nil {
			log.Printf("failed to invalidate donor cache %d: %v", donorID, err)
		}
	}
	return nil
}
