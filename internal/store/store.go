package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codecraftlabs/site-server/internal/models"
)

var (
	// ErrNotFound is returned when a keyed lookup or delete matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateCode is returned when creating a referral code that already
	// exists, case-insensitively, active or not.
	ErrDuplicateCode = errors.New("referral code already exists")
)

// PurchaseStore persists confirmed checkouts. There is deliberately no delete.
type PurchaseStore interface {
	List(ctx context.Context) ([]models.Purchase, error)
	Append(ctx context.Context, p models.Purchase) (models.Purchase, error)
}

// ReferralStore persists discount codes keyed case-insensitively by code.
type ReferralStore interface {
	List(ctx context.Context) ([]models.ReferralCode, error)
	Append(ctx context.Context, rc models.ReferralCode) (models.ReferralCode, error)
	// Remove deletes the code matching key case-insensitively and returns the
	// removed record, or ErrNotFound leaving the collection unchanged.
	Remove(ctx context.Context, code string) (models.ReferralCode, error)
	// Find returns the code matching key case-insensitively regardless of the
	// active flag, or ErrNotFound.
	Find(ctx context.Context, code string) (models.ReferralCode, error)
}

// ApplicationStore persists internship applications.
type ApplicationStore interface {
	List(ctx context.Context) ([]models.Application, error)
	Append(ctx context.Context, a models.Application) (models.Application, error)
}

// Store bundles the three collections behind one seam so callers never care
// whether records live in flat files or Postgres.
type Store interface {
	Purchases() PurchaseStore
	Referrals() ReferralStore
	Applications() ApplicationStore
}

// NewID builds a record id: unix milliseconds plus a short random suffix.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), randomSuffix(6))
}

func randomSuffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

// CodesEqual is the one definition of referral-code equality.
func CodesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}
