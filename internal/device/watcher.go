package device

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// A unit in USB mass-storage mode mounts under one of these volume names.
var volumeNames = []string{"CIRCUITPY", "MIDICAPTAIN"}

// ConfigFileName is the document the firmware reads from the volume root.
const ConfigFileName = "config.json"

// Mount is a detected controller volume.
type Mount struct {
	Name       string // volume name as mounted
	Path       string // volume root
	ConfigPath string // where the document lives on the volume
	HasConfig  bool   // whether the document exists right now
}

// EventType says what happened to a mount.
type EventType string

const (
	Connected    EventType = "connected"
	Disconnected EventType = "disconnected"
)

// Event is one mount appearing or disappearing.
type Event struct {
	Type  EventType
	Mount Mount
}

// MountRoots returns the directories removable volumes appear under on
// this platform. On Windows volumes get drive letters instead; Scan
// handles that case and there is nothing to watch.
func MountRoots() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Volumes"}
	case "linux":
		var roots []string
		if user := os.Getenv("USER"); user != "" {
			roots = append(roots, filepath.Join("/media", user), filepath.Join("/run/media", user))
		}
		return append(roots, "/media")
	default:
		return nil
	}
}

func isControllerVolume(name string) bool {
	for _, v := range volumeNames {
		if strings.EqualFold(name, v) {
			return true
		}
	}
	return false
}

func checkVolume(path string) (Mount, bool) {
	name := filepath.Base(path)
	if !isControllerVolume(name) {
		return Mount{}, false
	}
	if fi, err := os.Stat(path); err != nil || !fi.IsDir() {
		return Mount{}, false
	}
	cfg := filepath.Join(path, ConfigFileName)
	_, err := os.Stat(cfg)
	return Mount{Name: name, Path: path, ConfigPath: cfg, HasConfig: err == nil}, true
}

// Scan checks every mount root once and returns the controller volumes
// present right now.
func Scan() []Mount {
	if runtime.GOOS == "windows" {
		return scanDriveLetters()
	}
	var mounts []Mount
	for _, root := range MountRoots() {
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if m, ok := checkVolume(filepath.Join(root, e.Name())); ok {
				mounts = append(mounts, m)
			}
		}
	}
	return mounts
}

// Windows assigns drive letters rather than mount directories, so
// detection is a stat sweep over A..Z.
func scanDriveLetters() []Mount {
	var mounts []Mount
	for letter := 'A'; letter <= 'Z'; letter++ {
		path := fmt.Sprintf("%c:\\", letter)
		if m, ok := checkVolume(path); ok {
			mounts = append(mounts, m)
		}
	}
	return mounts
}

// Watcher reports controller volumes appearing and disappearing. One
// Watcher owns one fsnotify instance over the platform mount roots.
type Watcher struct {
	fs     *fsnotify.Watcher
	events chan Event
	known  map[string]Mount // keyed by volume path
}

// NewWatcher builds a watcher over the platform mount roots and primes it
// with the volumes already present (each emitted as Connected on Run).
func NewWatcher() (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create volume watcher: %w", err)
	}
	watching := 0
	for _, root := range MountRoots() {
		if err := fs.Add(root); err == nil {
			watching++
		}
	}
	if watching == 0 {
		fs.Close()
		return nil, fmt.Errorf("no watchable mount roots on %s", runtime.GOOS)
	}
	return &Watcher{
		fs:     fs,
		events: make(chan Event, 8),
		known:  make(map[string]Mount),
	}, nil
}

// Events delivers mount events. The channel closes when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches until ctx is done. The initial scan is replayed as
// Connected events so callers see the full picture without a separate
// Scan call.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.events)

	for _, m := range Scan() {
		w.known[m.Path] = m
		w.emit(ctx, Event{Type: Connected, Mount: m})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Printf("volume watcher: %v", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Create):
		if m, ok := checkVolume(ev.Name); ok {
			w.known[m.Path] = m
			w.emit(ctx, Event{Type: Connected, Mount: m})
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if m, ok := w.known[ev.Name]; ok {
			delete(w.known, ev.Name)
			w.emit(ctx, Event{Type: Disconnected, Mount: m})
		}
	}
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-ctx.Done():
	}
}

// Close releases the underlying fsnotify watcher. Safe to call after Run
// returns.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
