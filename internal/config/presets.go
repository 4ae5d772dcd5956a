package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Preset is one saved document with a stable identity, so renames don't
// orphan it.
type Preset struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Device   string          `json:"device"`
	SavedAt  time.Time       `json:"saved_at"`
	Document json.RawMessage `json:"document"`
}

// Library is the local store of saved documents: the desk-side
// collection a player switches between before writing one out to the
// controller.
type Library struct {
	Presets   []Preset `json:"presets"`
	CurrentID string   `json:"current_id,omitempty"`
}

func libraryDir() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("find config directory: %w", err)
	}
	return filepath.Join(configHome, "captain-config"), nil
}

// LibraryPath returns the default preset store location under the
// platform config directory.
func LibraryPath() (string, error) {
	dir, err := libraryDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "presets.json"), nil
}

// LoadLibrary reads the store at path. A missing file is a fresh, empty
// library, not an error.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Library{Presets: []Preset{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preset library: %w", err)
	}
	var lib Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse preset library: %w", err)
	}
	if lib.Presets == nil {
		lib.Presets = []Preset{}
	}
	return &lib, nil
}

// Save writes the store to path, creating the directory if needed.
func (l *Library) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create preset directory: %w", err)
	}
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset library: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write preset library: %w", err)
	}
	return nil
}

// Add stores doc under a fresh ID and returns the new preset. The first
// preset added to an empty library becomes current.
func (l *Library) Add(name, deviceName string, doc json.RawMessage) *Preset {
	p := Preset{
		ID:       uuid.New().String(),
		Name:     name,
		Device:   deviceName,
		SavedAt:  time.Now().UTC(),
		Document: append(json.RawMessage(nil), doc...),
	}
	l.Presets = append(l.Presets, p)
	if l.CurrentID == "" {
		l.CurrentID = p.ID
	}
	return &l.Presets[len(l.Presets)-1]
}

// Get returns the preset with the given ID, or nil.
func (l *Library) Get(id string) *Preset {
	for i := range l.Presets {
		if l.Presets[i].ID == id {
			return &l.Presets[i]
		}
	}
	return nil
}

// Find returns the preset matching ref by ID or, failing that, by exact
// name. Names are not unique; the oldest match wins.
func (l *Library) Find(ref string) *Preset {
	if p := l.Get(ref); p != nil {
		return p
	}
	for i := range l.Presets {
		if l.Presets[i].Name == ref {
			return &l.Presets[i]
		}
	}
	return nil
}

// Remove deletes the preset with the given ID and reports whether it
// existed. Removing the current preset clears the current mark.
func (l *Library) Remove(id string) bool {
	for i := range l.Presets {
		if l.Presets[i].ID == id {
			l.Presets = append(l.Presets[:i], l.Presets[i+1:]...)
			if l.CurrentID == id {
				l.CurrentID = ""
			}
			return true
		}
	}
	return false
}

// SetCurrent marks the preset with the given ID as the working one.
func (l *Library) SetCurrent(id string) bool {
	if l.Get(id) == nil {
		return false
	}
	l.CurrentID = id
	return true
}

// Current returns the working preset, or nil when none is marked.
func (l *Library) Current() *Preset {
	if l.CurrentID == "" {
		return nil
	}
	return l.Get(l.CurrentID)
}
