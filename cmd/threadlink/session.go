// ABOUTME: Shared helpers for commands that work on one stored thread.
// ABOUTME: Loads a snapshot, builds its resolver, and looks up items by id.
package main

import (
	"fmt"

	"github.com/2389-research/threadlink/internal/annotate"
	"github.com/2389-research/threadlink/internal/models"
	"github.com/2389-research/threadlink/internal/render"
	"github.com/2389-research/threadlink/internal/thread"
)

type session struct {
	name     string
	snapshot *models.Thread
	resolver *thread.Resolver
}

func openThread(name string) (*session, error) {
	t, err := globalSnapshots.Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return &session{
		name:     name,
		snapshot: t,
		resolver: render.NewCachedResolver(t.Items, nil, globalLog.WithField("thread", name)),
	}, nil
}

// textItem returns the text item with the given id.
func (s *session) textItem(id string) (models.Item, error) {
	for _, it := range s.snapshot.Items {
		if it.ID != id {
			continue
		}
		if !it.IsText() {
			return models.Item{}, fmt.Errorf("item %s is a %s item, not text", id, it.Kind)
		}
		return it, nil
	}
	return models.Item{}, fmt.Errorf("item %s not found in %s", id, s.name)
}

// postNumber is the item's own post number, falling back to the first
// No.<digits> in its text.
func postNumber(it models.Item, text string) string {
	if it.PostNumber != "" {
		return it.PostNumber
	}
	n, _ := annotate.FirstPostNumber(text)
	return n
}
