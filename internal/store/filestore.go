package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codecraftlabs/site-server/internal/models"
)

// FileStore keeps each collection as a single JSON array file under dir.
// Every mutation is a full read-modify-rewrite guarded by a per-collection
// mutex, and the rewrite goes through a temp file rename so a crash mid-write
// never leaves a half-written container behind.
//
// A malformed container fails closed: reads return the parse error instead of
// pretending the collection is empty, so corrupted data is never silently
// clobbered by the next write. A missing file reads as empty.
type FileStore struct {
	purchases    *filePurchases
	referrals    *fileReferrals
	applications *fileApplications
}

// NewFileStore ensures dir and the three container files exist and returns the
// store. Container files are seeded with an empty array.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	fs := &FileStore{
		purchases:    &filePurchases{container: container{path: filepath.Join(dir, "purchases.json")}},
		referrals:    &fileReferrals{container: container{path: filepath.Join(dir, "referrals.json")}},
		applications: &fileApplications{container: container{path: filepath.Join(dir, "applications.json")}},
	}
	for _, path := range []string{fs.purchases.path, fs.referrals.path, fs.applications.path} {
		if err := seedContainer(path); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

func (fs *FileStore) Purchases() PurchaseStore       { return fs.purchases }
func (fs *FileStore) Referrals() ReferralStore       { return fs.referrals }
func (fs *FileStore) Applications() ApplicationStore { return fs.applications }

func seedContainer(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	return nil
}

// container is the shared file-and-lock pair under every collection.
type container struct {
	mu   sync.Mutex
	path string
}

func readArray[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func writeArray[T any](path string, records []T) error {
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// --- purchases ---

type filePurchases struct {
	container
}

func (c *filePurchases) List(ctx context.Context) ([]models.Purchase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readArray[models.Purchase](c.path)
}

func (c *filePurchases) Append(ctx context.Context, p models.Purchase) (models.Purchase, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := readArray[models.Purchase](c.path)
	if err != nil {
		return models.Purchase{}, err
	}
	p.ID = NewID()
	p.CreatedAt = time.Now().UTC()
	records = append(records, p)
	if err := writeArray(c.path, records); err != nil {
		return models.Purchase{}, err
	}
	return p, nil
}

// --- referrals ---

type fileReferrals struct {
	container
}

func (c *fileReferrals) List(ctx context.Context) ([]models.ReferralCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readArray[models.ReferralCode](c.path)
}

func (c *fileReferrals) Append(ctx context.Context, rc models.ReferralCode) (models.ReferralCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := readArray[models.ReferralCode](c.path)
	if err != nil {
		return models.ReferralCode{}, err
	}
	for _, existing := range records {
		if CodesEqual(existing.Code, rc.Code) {
			return models.ReferralCode{}, ErrDuplicateCode
		}
	}
	rc.CreatedAt = time.Now().UTC()
	records = append(records, rc)
	if err := writeArray(c.path, records); err != nil {
		return models.ReferralCode{}, err
	}
	return rc, nil
}

func (c *fileReferrals) Remove(ctx context.Context, code string) (models.ReferralCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := readArray[models.ReferralCode](c.path)
	if err != nil {
		return models.ReferralCode{}, err
	}
	for i, existing := range records {
		if CodesEqual(existing.Code, code) {
			records = append(records[:i], records[i+1:]...)
			if err := writeArray(c.path, records); err != nil {
				return models.ReferralCode{}, err
			}
			return existing, nil
		}
	}
	return models.ReferralCode{}, ErrNotFound
}

func (c *fileReferrals) Find(ctx context.Context, code string) (models.ReferralCode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := readArray[models.ReferralCode](c.path)
	if err != nil {
		return models.ReferralCode{}, err
	}
	for _, existing := range records {
		if CodesEqual(existing.Code, code) {
			return existing, nil
		}
	}
	return models.ReferralCode{}, ErrNotFound
}

// --- applications ---

type fileApplications struct {
	container
}

func (c *fileApplications) List(ctx context.Context) ([]models.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readArray[models.Application](c.path)
}

func (c *fileApplications) Append(ctx context.Context, a models.Application) (models.Application, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := readArray[models.Application](c.path)
	if err != nil {
		return models.Application{}, err
	}
	a.ID = NewID()
	a.Status = "pending"
	a.CreatedAt = time.Now().UTC()
	records = append(records, a)
	if err := writeArray(c.path, records); err != nil {
		return models.Application{}, err
	}
	return a, nil
}
