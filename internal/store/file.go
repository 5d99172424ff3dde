package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/strideiq/policyengine/internal/rules"
)

// ruleDocument is the on-disk format of a FileStore rule set.
type ruleDocument struct {
	Rules []rules.Rule `json:"rules"`
}

// FileStore serves a rule set from a JSON document on disk. The parsed set
// is swapped atomically, and an fsnotify watcher reloads the document when
// it changes, so readers always see a consistent snapshot.
//
// The file holds a single rule set; the org scope is ignored. FileStore is
// read-only: rule authoring happens by editing the file.
type FileStore struct {
	path    string
	log     zerolog.Logger
	current atomic.Pointer[[]rules.Rule]
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewFileStore loads the rules document at path and starts watching it for
// changes. A document that fails to parse on reload is skipped with the
// previous snapshot left in place.
func NewFileStore(path string, log zerolog.Logger) (*FileStore, error) {
	f := &FileStore{
		path: path,
		log:  log,
		done: make(chan struct{}),
	}

	set, err := loadRuleDocument(path)
	if err != nil {
		return nil, err
	}
	f.current.Store(&set)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create rules file watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save and
	// the watch would be lost with it.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch rules file directory: %w", err)
	}
	f.watcher = watcher
	go f.watch()

	return f, nil
}

func (f *FileStore) watch() {
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(f.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := f.Reload(); err != nil {
				f.log.Warn().Err(err).Str("path", f.path).Msg("rules file reload failed, keeping previous set")
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Warn().Err(err).Msg("rules file watcher error")
		case <-f.done:
			return
		}
	}
}

// Reload re-reads the rules document and swaps the snapshot.
func (f *FileStore) Reload() error {
	set, err := loadRuleDocument(f.path)
	if err != nil {
		return err
	}
	f.current.Store(&set)
	f.log.Info().Int("rules", len(set)).Str("path", f.path).Msg("rules file reloaded")
	return nil
}

// ActiveRules returns the active rules from the current snapshot in file order.
func (f *FileStore) ActiveRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	set := *f.current.Load()
	result := make([]rules.Rule, 0, len(set))
	for _, rule := range set {
		if rule.Active {
			result = append(result, rule)
		}
	}
	return result, nil
}

// ListRules returns every rule from the current snapshot in file order.
func (f *FileStore) ListRules(ctx context.Context, orgID string) ([]rules.Rule, error) {
	set := *f.current.Load()
	result := make([]rules.Rule, len(set))
	copy(result, set)
	return result, nil
}

// UpsertRule is unsupported: the file is the source of truth.
func (f *FileStore) UpsertRule(ctx context.Context, orgID string, rule rules.Rule) error {
	return fmt.Errorf("file store is read-only: edit %s instead", f.path)
}

// DeleteRule is unsupported: the file is the source of truth.
func (f *FileStore) DeleteRule(ctx context.Context, orgID, id string) error {
	return fmt.Errorf("file store is read-only: edit %s instead", f.path)
}

// Close stops the watcher.
func (f *FileStore) Close() error {
	close(f.done)
	return f.watcher.Close()
}

func loadRuleDocument(path string) ([]rules.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var doc ruleDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	if err := rules.ValidateSet(doc.Rules); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return doc.Rules, nil
}
