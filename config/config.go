// Package config loads the JSON document describing a session's initial
// feature toggles and monitor-command table, optionally hot-reloading it
// with fsnotify the way the donor's vfs.FSNotifyWatcher wraps
// fsnotify.Watcher for filesystem change events.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/orizon-lang/gdbstub/gdbstub"
)

// Document is the on-disk shape of a config file.
type Document struct {
	Features struct {
		TargetDescriptionRead bool `json:"target_description_read"`
	} `json:"features"`
	Commands []CommandSpec `json:"commands"`
}

// CommandSpec is one monitor-command table entry: running it writes Output
// verbatim to the Monitor Output Helper, ignoring any arguments GDB passed
// after the command name.
type CommandSpec struct {
	Name   string `json:"name"`
	Output string `json:"output"`
}

func loadDocument(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return doc, nil
}

// Snapshot is an immutable view of a Document, safe to share across
// goroutines and to hand to gdbstub.Session as its monitor-command source.
type Snapshot struct {
	doc Document
}

// Features reports the FeatureSet this snapshot configures.
func (s Snapshot) Features() gdbstub.FeatureSet {
	return gdbstub.FeatureSet{TargetDescriptionRead: s.doc.Features.TargetDescriptionRead}
}

// CustomCommands adapts every CommandSpec into a gdbstub.CustomCommand that
// writes its configured Output and ignores arguments.
func (s Snapshot) CustomCommands() []gdbstub.CustomCommand {
	cmds := make([]gdbstub.CustomCommand, 0, len(s.doc.Commands))

	for _, spec := range s.doc.Commands {
		output := spec.Output
		cmds = append(cmds, gdbstub.CustomCommand{
			Name: spec.Name,
			Run: func(w *gdbstub.MonitorWriter, args []string) error {
				w.Printf("%s", output)

				return nil
			},
		})
	}

	return cmds
}

// Watcher loads a config file once and, if started with Watch, hot-swaps
// its Snapshot whenever the file changes on disk. The zero value is not
// usable; construct with Load.
type Watcher struct {
	path string

	mu   sync.RWMutex
	snap Snapshot

	fw     *fsnotify.Watcher
	errC   chan error
	closed chan struct{}
}

// Load reads and parses path once, returning a Watcher holding that
// snapshot. Call Watch to start hot-reloading; without it, the Watcher
// simply serves the snapshot taken at Load time.
func Load(path string) (*Watcher, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return nil, err
	}

	return &Watcher{path: path, snap: Snapshot{doc: doc}}, nil
}

// Snapshot returns the current configuration. Safe for concurrent use.
func (w *Watcher) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.snap
}

// Watch starts an fsnotify watch on the config file's directory (fsnotify
// cannot watch a single file reliably across editors that replace it via
// rename, the same reasoning behind watching containing directories
// elsewhere in the donor's vfs package) and reloads Snapshot on every
// write/create/rename event that touches path. Errors from a failed reload
// are delivered on the returned channel rather than torn down silently, so
// a caller can log them and keep serving the last-good snapshot.
func (w *Watcher) Watch() (<-chan error, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: new watcher: %w", err)
	}

	dir := parentDir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()

		return nil, fmt.Errorf("config: watch %s: %w", dir, err)
	}

	w.fw = fw
	w.errC = make(chan error, 8)
	w.closed = make(chan struct{})

	go w.loop()

	return w.errC, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}

			if ev.Name != w.path {
				continue
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			doc, err := loadDocument(w.path)
			if err != nil {
				w.trySend(err)

				continue
			}

			w.mu.Lock()
			w.snap = Snapshot{doc: doc}
			w.mu.Unlock()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}

			w.trySend(err)
		case <-w.closed:
			return
		}
	}
}

func (w *Watcher) trySend(err error) {
	select {
	case w.errC <- err:
	default:
	}
}

// Close stops a started watch. Calling Close on a Watcher that never had
// Watch started is a no-op.
func (w *Watcher) Close() error {
	if w.fw == nil {
		return nil
	}

	close(w.closed)

	return w.fw.Close()
}

func parentDir(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}

	return "."
}
