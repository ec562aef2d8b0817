package chatloop

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrUnsupportedVersion is returned by FileStore.Load when the file was
// written by a newer schema than this package understands.
var ErrUnsupportedVersion = errors.New("unsupported settings version")

// Store loads and saves plugin settings.
type Store interface {
	Load() (Settings, error)
	Save(Settings) error
}

// FileStore keeps settings in a JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by the file at path. The file and its
// directory are created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (fs *FileStore) Path() string { return fs.path }

// Load reads the settings file. A missing file yields DefaultSettings and no
// error. On any error the returned settings are the defaults.
func (fs *FileStore) Load() (Settings, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}

	s := DefaultSettings()
	s.Version = 0
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings %s: %w", fs.path, err)
	}
	if s.Version > SettingsVersion {
		return DefaultSettings(), fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	// Files written before the version field existed are treated as v1.
	if s.Version == 0 {
		s.Version = SettingsVersion
	}
	return s, nil
}

// Save writes the settings through a temporary file so a crash never leaves
// a truncated file behind.
func (fs *FileStore) Save(s Settings) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// Config pairs the live settings with the store they are persisted to.
// Everything that mutates the settings calls Save afterwards.
type Config struct {
	Settings

	store Store
	log   logrus.FieldLogger
}

func newConfig(s Settings, store Store, log logrus.FieldLogger) *Config {
	return &Config{Settings: s, store: store, log: log}
}

// Save persists the current settings.
func (c *Config) Save() error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Save(c.Settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// saveOrLog persists and logs a failure instead of returning it. Used where
// a failed write must not interrupt the caller.
func (c *Config) saveOrLog(what string) {
	if err := c.Save(); err != nil {
		c.log.WithError(err).Warnf("[AutoChat] could not persist %s", what)
	}
}
