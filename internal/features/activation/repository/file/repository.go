package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"giveaway-bot/internal/common/logger"
)

// Repository keeps activated guild IDs as a JSON array in a single file.
// Every change rewrites the whole file.
type Repository struct {
	path string

	mu     sync.Mutex
	guilds []string
}

// New loads path. A missing or unreadable file starts with no activated guilds.
func New(path string) *Repository {
	r := &Repository{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		logger.Warn().Err(err).Str("path", path).Msg("Activation file unreadable, starting empty")
	default:
		if err := json.Unmarshal(data, &r.guilds); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Activation file malformed, starting empty")
			r.guilds = nil
		}
	}
	return r
}

func (r *Repository) IsActivated(_ context.Context, guildID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.guilds, guildID), nil
}

func (r *Repository) SetActivated(_ context.Context, guildID string, active bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.Index(r.guilds, guildID)
	switch {
	case active && idx >= 0, !active && idx < 0:
		return false, nil
	case active:
		r.guilds = append(r.guilds, guildID)
	default:
		r.guilds = slices.Delete(r.guilds, idx, idx+1)
	}

	if err := r.flush(); err != nil {
		return false, err
	}
	return true, nil
}

// flush writes a temp file and renames it over the target. Caller holds mu.
func (r *Repository) flush() error {
	guilds := r.guilds
	if guilds == nil {
		guilds = []string{}
	}
	data, err := json.Marshal(guilds)
	if err != nil {
		return fmt.Errorf("marshal activation list: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp activation file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write activation file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close activation file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace activation file: %w", err)
	}
	return nil
}
