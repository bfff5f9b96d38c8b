package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/codecraftlabs/site-server/internal/cache"
	"github.com/codecraftlabs/site-server/internal/models"
	"github.com/codecraftlabs/site-server/internal/store"
)

// ErrInvalidDiscount rejects percents outside (0, 100].
var ErrInvalidDiscount = errors.New("discountPercent must be greater than 0 and at most 100")

// ReferralService owns the referral-code rules: discount range on create,
// case-insensitive uniqueness (enforced by the store), and the public
// validation lookup. A read-through cache keeps repeated checkout validations
// of the same code off the container file.
type ReferralService struct {
	referrals store.ReferralStore
	cache     *cache.ReferralCache
	log       *zap.Logger
}

func NewReferralService(referrals store.ReferralStore, log *zap.Logger) *ReferralService {
	return &ReferralService{
		referrals: referrals,
		cache:     cache.NewReferralCache(),
		log:       log,
	}
}

// Create validates the discount range and appends the code, active by default.
func (s *ReferralService) Create(ctx context.Context, rc models.ReferralCode) (models.ReferralCode, error) {
	if rc.DiscountPercent <= 0 || rc.DiscountPercent > 100 {
		return models.ReferralCode{}, ErrInvalidDiscount
	}
	rc.Active = true

	created, err := s.referrals.Append(ctx, rc)
	if err != nil {
		return models.ReferralCode{}, err
	}
	s.log.Info("referral code created",
		zap.String("code", created.Code),
		zap.String("agent", created.AgentName),
		zap.Float64("discountPercent", created.DiscountPercent))
	return created, nil
}

// Delete removes the code (case-insensitive) and returns the removed record.
func (s *ReferralService) Delete(ctx context.Context, code string) (models.ReferralCode, error) {
	removed, err := s.referrals.Remove(ctx, code)
	if err != nil {
		return models.ReferralCode{}, err
	}
	s.cache.Invalidate(code)
	s.log.Info("referral code deleted", zap.String("code", removed.Code))
	return removed, nil
}

// List returns every code, active or not.
func (s *ReferralService) List(ctx context.Context) ([]models.ReferralCode, error) {
	return s.referrals.List(ctx)
}

// Validate is the public lookup used at checkout. An unknown or inactive code
// is not an error; it answers valid=false.
func (s *ReferralService) Validate(ctx context.Context, code string) (models.ValidationResult, error) {
	rc, ok := s.cache.Get(code)
	if !ok {
		var err error
		rc, err = s.referrals.Find(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return models.ValidationResult{Valid: false}, nil
		}
		if err != nil {
			return models.ValidationResult{}, err
		}
		s.cache.Set(rc)
	}

	if !rc.Active {
		return models.ValidationResult{Valid: false}, nil
	}
	return models.ValidationResult{
		Valid:           true,
		DiscountPercent: rc.DiscountPercent,
		AgentName:       rc.AgentName,
	}, nil
}
