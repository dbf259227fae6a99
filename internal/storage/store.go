// ABOUTME: Interface definitions for thread snapshot and like-count storage.
// ABOUTME: Defines the contracts plus shared thread-name validation and sentinel errors.
package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/threadlink/internal/models"
)

// ErrThreadNotFound is returned when no snapshot exists under a name.
var ErrThreadNotFound = errors.New("thread not found")

// ThreadInfo summarizes a stored snapshot for listing.
type ThreadInfo struct {
	Name      string    `json:"name"`
	Title     string    `json:"title,omitempty"`
	Items     int       `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListThreadsOptions configures pagination for listing snapshots.
type ListThreadsOptions struct {
	Limit  int
	Offset int
}

// SnapshotStore defines operations for thread snapshot persistence.
type SnapshotStore interface {
	// Load reads the snapshot stored under name.
	Load(name string) (*models.Thread, error)

	// Save persists a snapshot under name, replacing any existing one.
	Save(name string, thread *models.Thread) error

	// List returns stored snapshots ordered by name.
	List(opts ListThreadsOptions) ([]ThreadInfo, error)

	// Close releases any resources held by the store.
	Close() error
}

// LikeStore defines operations for the caller-owned optimistic like counts
// of each thread, keyed by post number.
type LikeStore interface {
	// Counts returns a copy of the counts for a thread. A thread with no
	// counts yields an empty map.
	Counts(name string) (map[string]int, error)

	// Increment adds one like to a post and returns its new count.
	Increment(name, postNumber string) (int, error)

	// Merge replaces local counts with server-confirmed ones. Entries with a
	// count of zero or less are removed.
	Merge(name string, confirmed map[string]int) error

	// Close releases any resources held by the store.
	Close() error
}

// ValidateName rejects thread names that could escape the data directory.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("thread name is empty")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return fmt.Errorf("invalid thread name %q", name)
	}
	return nil
}
