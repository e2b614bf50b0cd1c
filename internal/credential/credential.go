// Package credential validates SkillsMP API keys and persists them to the
// local dotenv file.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/gofrs/flock"

	"github.com/kamusis/skillsmp-cli/internal/config"
)

// ExpectedFormat is shown to users when a key is rejected.
const ExpectedFormat = "sk_live_skillsmp_..."

const lockTimeout = 5 * time.Second

var keyPattern = regexp.MustCompile(`^sk_live_skillsmp_[A-Za-z0-9]+$`)

// ErrInvalidFormat reports a key that does not look like a SkillsMP key.
var ErrInvalidFormat = errors.New("invalid API key format")

// ValidationError carries the rejected key value.
type ValidationError struct {
	Key string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %q", ErrInvalidFormat, ExpectedFormat, e.Key)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidFormat }

// IsValidFormat reports whether key matches the SkillsMP key shape.
func IsValidFormat(key string) bool {
	return keyPattern.MatchString(key)
}

// Validate returns a *ValidationError when key is malformed.
func Validate(key string) error {
	if !IsValidFormat(key) {
		return &ValidationError{Key: key}
	}
	return nil
}

// Content returns the exact file body written for key.
func Content(key string) string {
	return "# SkillsMP API settings\n" + config.APIKeyEnv + "=" + key + "\n"
}

// Store writes the API key file.
type Store struct {
	Path string
}

// Set validates key and replaces the whole file with it. Nothing is written
// when validation fails. Concurrent writers are serialised by a lock file
// next to the target.
func (s Store) Set(key string) error {
	if err := Validate(key); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}

	unlock, err := s.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return writeAtomic(s.Path, []byte(Content(key)))
}

func (s Store) lock() (func(), error) {
	lockPath := s.Path + ".lock"
	l := flock.New(lockPath)
	deadline := time.Now().Add(lockTimeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return func() {}, fmt.Errorf("cannot acquire credential lock: %w", err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return func() {}, fmt.Errorf("another setup is in progress (lock: %s)", lockPath)
		}
		time.Sleep(100 * time.Millisecond)
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write credential: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("write credential: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}
