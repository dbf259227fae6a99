// ABOUTME: Partitions a flat thread snapshot into per-post blocks.
// ABOUTME: A block is one text item plus the media items that trail it.
package thread

import "github.com/2389-research/threadlink/internal/models"

// Chunk splits items into blocks. Each text item starts a block that
// absorbs the following images and videos; an end marker closes the current
// block and forms a single-item block of its own. Media with no text before
// them in their run (at the head of the stream or right after an end
// marker) are orphaned and belong to no block.
func Chunk(items []models.Item) []models.Block {
	var blocks []models.Block
	var current models.Block
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, current)
		}
		current = nil
	}

	for _, it := range items {
		switch {
		case it.IsText():
			flush()
			current = models.Block{it}
		case it.IsMedia():
			if current != nil {
				current = append(current, it)
			}
		case it.IsEnd():
			flush()
			blocks = append(blocks, models.Block{it})
		}
	}
	flush()
	return blocks
}

// BlockAt builds the block that starts at items[index]. It returns nil when
// index is out of range or does not point at a text item.
func BlockAt(items []models.Item, index int) models.Block {
	if index < 0 || index >= len(items) || !items[index].IsText() {
		return nil
	}
	block := models.Block{items[index]}
	for _, it := range items[index+1:] {
		if !it.IsMedia() {
			break
		}
		block = append(block, it)
	}
	return block
}
