// ABOUTME: YAML-file snapshot storage, one file per thread under <data_dir>/threads.
// ABOUTME: Derives stable UUIDs for items without ids and rejects snapshots with duplicate ids.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/2389-research/threadlink/internal/models"
)

const snapshotExt = ".yaml"

// YAMLSnapshotStore stores thread snapshots as YAML files.
type YAMLSnapshotStore struct {
	dir string // <data_dir>/threads
	log *logrus.Entry
}

// NewYAMLSnapshotStore creates a snapshot store rooted at dataDir.
func NewYAMLSnapshotStore(dataDir string, log *logrus.Entry) (*YAMLSnapshotStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is empty")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &YAMLSnapshotStore{
		dir: filepath.Join(dataDir, "threads"),
		log: log.WithField("store", "snapshots"),
	}, nil
}

// Load reads the snapshot stored under name.
func (s *YAMLSnapshotStore) Load(name string) (*models.Thread, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var t models.Thread
	if err := readYAML(s.path(name), &t); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%q: %w", name, ErrThreadNotFound)
		}
		return nil, fmt.Errorf("failed to load thread %q: %w", name, err)
	}
	if err := prepareItems(name, t.Items); err != nil {
		return nil, fmt.Errorf("thread %q: %w", name, err)
	}
	return &t, nil
}

// Save persists a snapshot under name. Items without an id are given one
// in place before writing.
func (s *YAMLSnapshotStore) Save(name string, thread *models.Thread) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if thread == nil {
		return fmt.Errorf("thread is nil")
	}
	if err := prepareItems(name, thread.Items); err != nil {
		return fmt.Errorf("thread %q: %w", name, err)
	}
	if err := writeYAML(s.path(name), thread); err != nil {
		return fmt.Errorf("failed to save thread %q: %w", name, err)
	}
	s.log.WithFields(logrus.Fields{"thread": name, "items": len(thread.Items)}).Debug("saved snapshot")
	return nil
}

// List returns stored snapshots ordered by name. Unreadable files are
// skipped with a warning.
func (s *YAMLSnapshotStore) List(opts ListThreadsOptions) ([]ThreadInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	var infos []ThreadInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), snapshotExt)

		var t models.Thread
		if err := readYAML(filepath.Join(s.dir, e.Name()), &t); err != nil {
			s.log.WithError(err).WithField("thread", name).Warn("skipping unreadable snapshot")
			continue
		}
		info := ThreadInfo{Name: name, Title: t.Title, Items: len(t.Items)}
		if fi, err := e.Info(); err == nil {
			info.UpdatedAt = fi.ModTime()
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(infos) {
			return nil, nil
		}
		infos = infos[opts.Offset:]
	}
	if opts.Limit > 0 && len(infos) > opts.Limit {
		infos = infos[:opts.Limit]
	}
	return infos, nil
}

// Close releases any resources held by the store.
func (s *YAMLSnapshotStore) Close() error {
	return nil
}

func (s *YAMLSnapshotStore) path(name string) string {
	return filepath.Join(s.dir, name+snapshotExt)
}

// prepareItems fills in missing ids, normalizes kind names, and rejects
// unknown kinds and duplicate ids. A missing id is derived from the thread
// name and item position, so it is the same on every load.
func prepareItems(name string, items []models.Item) error {
	seen := make(map[string]bool, len(items))
	for i := range items {
		it := &items[i]
		kind, ok := models.ParseItemKind(string(it.Kind))
		if !ok {
			return fmt.Errorf("item %d: unknown kind %q", i, it.Kind)
		}
		it.Kind = kind
		if it.ID == "" {
			it.ID = derivedItemID(name, i)
		}
		if seen[it.ID] {
			return fmt.Errorf("item %d: duplicate id %q", i, it.ID)
		}
		seen[it.ID] = true
	}
	return nil
}

var itemIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("threadlink:item"))

func derivedItemID(name string, index int) string {
	return uuid.NewSHA1(itemIDSpace, []byte(name+"#"+strconv.Itoa(index))).String()
}
