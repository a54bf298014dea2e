package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Preferences is the only state persisted across runs: the selected catalog entry
type Preferences struct {
	path  string
	mu    sync.Mutex
	state preferencesFile
}

type preferencesFile struct {
	CatalogID  int       `yaml:"catalog_id,omitempty"`
	SelectedAt time.Time `yaml:"selected_at,omitempty"`
}

// LoadPreferences reads the state file at path. A missing file means nothing is selected yet.
func LoadPreferences(path string) (*Preferences, error) {
	p := &Preferences{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if err := yaml.Unmarshal(data, &p.state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}

	return p, nil
}

// SelectedCatalog returns the stored catalog id, if any
func (p *Preferences) SelectedCatalog() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.CatalogID, p.state.CatalogID > 0
}

// SelectCatalog overwrites the stored catalog id and writes it to disk
func (p *Preferences) SelectCatalog(id int) error {
	if id <= 0 {
		return fmt.Errorf("catalog id must be positive, got %d", id)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next := preferencesFile{CatalogID: id, SelectedAt: time.Now().UTC()}
	if err := p.write(next); err != nil {
		return err
	}
	p.state = next
	return nil
}

// Path returns the backing file location
func (p *Preferences) Path() string {
	return p.path
}

func (p *Preferences) write(state preferencesFile) error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := yaml.Marshal(&state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
