package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/auth"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
	"github.com/manea-palluat/flexfit-workout-sub001/pkg"
)

func defaultIdentityPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".flexfit-identity.json"
	}
	return filepath.Join(dir, "flexfit", "identity.json")
}

// identityFile keeps the signed-in identity between invocations.
type identityFile struct {
	path string
}

// Load returns tracking.ErrNotAuthenticated when nobody is signed in.
func (f *identityFile) Load() (auth.Identity, error) {
	exists, err := pkg.PathExists(f.path, false)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("identity file: %w", err)
	}
	if !exists {
		return auth.Identity{}, tracking.ErrNotAuthenticated
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("read identity: %w", err)
	}

	var identity auth.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return auth.Identity{}, fmt.Errorf("decode identity [%s]: %w", f.path, err)
	}
	if !identity.SignedIn() {
		return auth.Identity{}, tracking.ErrNotAuthenticated
	}
	return identity, nil
}

func (f *identityFile) Save(identity auth.Identity) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create identity dir: %w", err)
	}
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *identityFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove identity: %w", err)
	}
	return nil
}
