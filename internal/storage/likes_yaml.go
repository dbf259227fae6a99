// ABOUTME: YAML-file storage for optimistic like counts, one file per thread.
// ABOUTME: Callers hand copies of the counts to the overlay; the store alone writes them.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// likesFile is the YAML structure for <data_dir>/likes/<name>.yaml.
type likesFile struct {
	Counts map[string]int `yaml:"counts"`
}

// YAMLLikeStore stores like counts as YAML files. It is safe for
// concurrent use within one process.
type YAMLLikeStore struct {
	mu  sync.Mutex
	dir string // <data_dir>/likes
	log *logrus.Entry
}

// NewYAMLLikeStore creates a like store rooted at dataDir.
func NewYAMLLikeStore(dataDir string, log *logrus.Entry) (*YAMLLikeStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is empty")
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &YAMLLikeStore{
		dir: filepath.Join(dataDir, "likes"),
		log: log.WithField("store", "likes"),
	}, nil
}

// Counts returns a copy of the counts for a thread.
func (s *YAMLLikeStore) Counts(name string) (map[string]int, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := s.read(name)
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// Increment adds one like to a post and returns its new count.
func (s *YAMLLikeStore) Increment(name, postNumber string) (int, error) {
	if err := ValidateName(name); err != nil {
		return 0, err
	}
	number, err := normalizePostNumber(postNumber)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := s.read(name)
	if err != nil {
		return 0, err
	}
	counts[number]++
	if err := s.write(name, counts); err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"thread": name, "post_number": number, "count": counts[number]}).Debug("incremented like")
	return counts[number], nil
}

// Merge replaces local counts with server-confirmed ones.
func (s *YAMLLikeStore) Merge(name string, confirmed map[string]int) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts, err := s.read(name)
	if err != nil {
		return err
	}
	for raw, c := range confirmed {
		number, err := normalizePostNumber(raw)
		if err != nil {
			return err
		}
		if c <= 0 {
			delete(counts, number)
			continue
		}
		counts[number] = c
	}
	return s.write(name, counts)
}

// Close releases any resources held by the store.
func (s *YAMLLikeStore) Close() error {
	return nil
}

func (s *YAMLLikeStore) path(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// read returns the stored counts as a fresh map. Callers hold s.mu.
func (s *YAMLLikeStore) read(name string) (map[string]int, error) {
	var f likesFile
	if err := readYAML(s.path(name), &f); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]int), nil
		}
		return nil, fmt.Errorf("failed to read likes for %q: %w", name, err)
	}
	counts := make(map[string]int, len(f.Counts))
	for k, v := range f.Counts {
		counts[k] = v
	}
	return counts, nil
}

func (s *YAMLLikeStore) write(name string, counts map[string]int) error {
	if err := writeYAML(s.path(name), likesFile{Counts: counts}); err != nil {
		return fmt.Errorf("failed to write likes for %q: %w", name, err)
	}
	return nil
}

var postNumberDigitsRe = regexp.MustCompile(`^(?i:no[.．]?\s*)?(\d+)$`)

// normalizePostNumber accepts "100" or "No.100" and returns "100".
func normalizePostNumber(s string) (string, error) {
	m := postNumberDigitsRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fmt.Errorf("invalid post number %q", s)
	}
	return m[1], nil
}
