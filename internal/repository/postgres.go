// Package repository is the PostgreSQL implementation of store.Store, for
// deployments that outgrow the flat-file containers. One table per collection,
// student/items payloads kept as jsonb so list calls round-trip them untouched.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/codecraftlabs/site-server/internal/models"
	"github.com/codecraftlabs/site-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS purchases (
	id         TEXT PRIMARY KEY,
	txn_id     TEXT NOT NULL,
	student    JSONB NOT NULL,
	items      JSONB NOT NULL,
	subtotal   DOUBLE PRECISION NOT NULL,
	taxes      DOUBLE PRECISION NOT NULL,
	total      DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS referral_codes (
	code             TEXT PRIMARY KEY,
	agent_name       TEXT NOT NULL,
	email            TEXT NOT NULL,
	discount_percent DOUBLE PRECISION NOT NULL,
	active           BOOLEAN NOT NULL DEFAULT TRUE,
	created_at       TIMESTAMPTZ NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS referral_codes_code_lower ON referral_codes (LOWER(code));

CREATE TABLE IF NOT EXISTS applications (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL,
	phone        TEXT NOT NULL,
	college      TEXT NOT NULL DEFAULT '',
	year         TEXT NOT NULL DEFAULT '',
	domain       TEXT NOT NULL,
	project      TEXT NOT NULL DEFAULT '',
	cover_letter TEXT NOT NULL DEFAULT '',
	resume       TEXT,
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   TIMESTAMPTZ NOT NULL
);
`

// PostgresStore implements store.Store on top of a sqlx connection.
type PostgresStore struct {
	purchases    *purchaseRepo
	referrals    *referralRepo
	applications *applicationRepo
}

// NewPostgresStore bootstraps the schema and returns the store.
func NewPostgresStore(ctx context.Context, db *sqlx.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	return &PostgresStore{
		purchases:    &purchaseRepo{db: db},
		referrals:    &referralRepo{db: db},
		applications: &applicationRepo{db: db},
	}, nil
}

func (s *PostgresStore) Purchases() store.PurchaseStore       { return s.purchases }
func (s *PostgresStore) Referrals() store.ReferralStore       { return s.referrals }
func (s *PostgresStore) Applications() store.ApplicationStore { return s.applications }

type purchaseRepo struct {
	db *sqlx.DB
}

func (r *purchaseRepo) List(ctx context.Context) ([]models.Purchase, error) {
	records := []models.Purchase{}
	query := `
		SELECT id, txn_id, student, items, subtotal, taxes, total, created_at
		FROM purchases
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return records, nil
}

func (r *purchaseRepo) Append(ctx context.Context, p models.Purchase) (models.Purchase, error) {
	p.ID = store.NewID()
	p.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO purchases (id, txn_id, student, items, subtotal, taxes, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.db.ExecContext(ctx, query,
		p.ID, p.TxnID, []byte(p.Student), []byte(p.Items), p.Subtotal, p.Taxes, p.Total, p.CreatedAt,
	); err != nil {
		return models.Purchase{}, fmt.Errorf("insert purchase: %w", err)
	}
	return p, nil
}

type referralRepo struct {
	db *sqlx.DB
}

func (r *referralRepo) List(ctx context.Context) ([]models.ReferralCode, error) {
	records := []models.ReferralCode{}
	query := `
		SELECT code, agent_name, email, discount_percent, active, created_at
		FROM referral_codes
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list referral codes: %w", err)
	}
	return records, nil
}

func (r *referralRepo) Append(ctx context.Context, rc models.ReferralCode) (models.ReferralCode, error) {
	rc.CreatedAt = time.Now().UTC()

	// The unique index on LOWER(code) backstops the pre-check under
	// concurrent creates.
	var exists bool
	check := `SELECT EXISTS (SELECT 1 FROM referral_codes WHERE LOWER(code) = LOWER($1))`
	if err := r.db.GetContext(ctx, &exists, check, rc.Code); err != nil {
		return models.ReferralCode{}, fmt.Errorf("check referral code: %w", err)
	}
	if exists {
		return models.ReferralCode{}, store.ErrDuplicateCode
	}

	query := `
		INSERT INTO referral_codes (code, agent_name, email, discount_percent, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		rc.Code, rc.AgentName, rc.Email, rc.DiscountPercent, rc.Active, rc.CreatedAt,
	); err != nil {
		return models.ReferralCode{}, fmt.Errorf("insert referral code: %w", err)
	}
	return rc, nil
}

func (r *referralRepo) Remove(ctx context.Context, code string) (models.ReferralCode, error) {
	var removed models.ReferralCode
	query := `
		DELETE FROM referral_codes
		WHERE LOWER(code) = LOWER($1)
		RETURNING code, agent_name, email, discount_percent, active, created_at
	`
	if err := r.db.GetContext(ctx, &removed, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReferralCode{}, store.ErrNotFound
		}
		return models.ReferralCode{}, fmt.Errorf("delete referral code: %w", err)
	}
	return removed, nil
}

func (r *referralRepo) Find(ctx context.Context, code string) (models.ReferralCode, error) {
	var found models.ReferralCode
	query := `
		SELECT code, agent_name, email, discount_percent, active, created_at
		FROM referral_codes
		WHERE LOWER(code) = LOWER($1)
	`
	if err := r.db.GetContext(ctx, &found, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReferralCode{}, store.ErrNotFound
		}
		return models.ReferralCode{}, fmt.Errorf("find referral code: %w", err)
	}
	return found, nil
}

type applicationRepo struct {
	db *sqlx.DB
}

func (r *applicationRepo) List(ctx context.Context) ([]models.Application, error) {
	records := []models.Application{}
	query := `
		SELECT id, name, email, phone, college, year, domain, project, cover_letter, resume, status, created_at
		FROM applications
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return records, nil
}

func (r *applicationRepo) Append(ctx context.Context, a models.Application) (models.Application, error) {
	a.ID = store.NewID()
	a.Status = "pending"
	a.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO applications (id, name, email, phone, college, year, domain, project, cover_letter, resume, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := r.db.ExecContext(ctx, query,
		a.ID, a.Name, a.Email, a.Phone, a.College, a.Year, a.Domain, a.Project, a.CoverLetter, a.Resume, a.Status, a.CreatedAt,
	); err != nil {
		return models.Application{}, fmt.Errorf("insert application: %w", err)
	}
	return a, nil
}
