package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/comitanigiacomo/kanso-habits/internal/core/domain"
)

var _ domain.StateRepository = (*JSONFileRepository)(nil)

// JSONFileRepository keeps the whole state in one JSON document on disk.
type JSONFileRepository struct {
	path string
	now  func() time.Time
}

func NewJSONFileRepository(path string) *JSONFileRepository {
	return &JSONFileRepository{path: path, now: time.Now}
}

func (r *JSONFileRepository) Path() string {
	return r.path
}

func (r *JSONFileRepository) Load(ctx context.Context) (*domain.State, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(r.path); errors.Is(err, os.ErrNotExist) {
		if err := r.Save(ctx, domain.NewState(r.now())); err != nil {
			return nil, fmt.Errorf("initialize store: %w", err)
		}
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreCorrupt, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return domain.NewState(r.now()), nil
	}

	return decodeState(data)
}

// Save writes a sibling temp file and renames it over the store.
func (r *JSONFileRepository) Save(ctx context.Context, s *domain.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeState(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}
