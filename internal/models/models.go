// ABOUTME: Core data models for thread snapshots, post blocks, and display tokens.
// ABOUTME: Provides constructor functions and type definitions shared by every threadlink package.
package models

import "strings"

// ItemKind tags which variant of a thread item is populated.
type ItemKind string

const (
	KindText  ItemKind = "text"
	KindImage ItemKind = "image"
	KindVideo ItemKind = "video"
	KindEnd   ItemKind = "end"
)

// Item is one element of a thread snapshot. Fields that do not apply to
// Kind are left empty; an empty optional field means "none".
type Item struct {
	ID   string   `yaml:"id" json:"id"`
	Kind ItemKind `yaml:"kind" json:"kind"`

	// text
	RawMarkup  string `yaml:"raw_markup,omitempty" json:"raw_markup,omitempty"`
	PostNumber string `yaml:"post_number,omitempty" json:"post_number,omitempty"`

	// image / video
	MediaURL     string `yaml:"media_url,omitempty" json:"media_url,omitempty"`
	ThumbnailURL string `yaml:"thumbnail_url,omitempty" json:"thumbnail_url,omitempty"`
	FileName     string `yaml:"file_name,omitempty" json:"file_name,omitempty"`
	Caption      string `yaml:"caption,omitempty" json:"caption,omitempty"`

	// end marker
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// NewText creates a text item. postNumber may be empty.
func NewText(id, rawMarkup, postNumber string) Item {
	return Item{ID: id, Kind: KindText, RawMarkup: rawMarkup, PostNumber: postNumber}
}

// NewImage creates an image item.
func NewImage(id, mediaURL, fileName, caption string) Item {
	return Item{ID: id, Kind: KindImage, MediaURL: mediaURL, FileName: fileName, Caption: caption}
}

// NewVideo creates a video item.
func NewVideo(id, mediaURL, thumbnailURL, fileName, caption string) Item {
	return Item{ID: id, Kind: KindVideo, MediaURL: mediaURL, ThumbnailURL: thumbnailURL, FileName: fileName, Caption: caption}
}

// NewEndMarker creates an end-of-thread marker.
func NewEndMarker(id, label string) Item {
	return Item{ID: id, Kind: KindEnd, Label: label}
}

// IsText reports whether the item is a text post.
func (it Item) IsText() bool { return it.Kind == KindText }

// IsMedia reports whether the item is an image or a video.
func (it Item) IsMedia() bool { return it.Kind == KindImage || it.Kind == KindVideo }

// IsEnd reports whether the item is an end-of-thread marker.
func (it Item) IsEnd() bool { return it.Kind == KindEnd }

// Block is one text item followed by the media items trailing it.
type Block []Item

// Head returns the first item of the block. It panics on an empty block,
// which the chunker never produces.
func (b Block) Head() Item { return b[0] }

// IDs returns the item ids of the block in order.
func (b Block) IDs() []string {
	ids := make([]string, len(b))
	for i, it := range b {
		ids[i] = it.ID
	}
	return ids
}

// Thread is one snapshot of a thread together with its title.
type Thread struct {
	Title string `yaml:"title,omitempty" json:"title,omitempty"`
	Items []Item `yaml:"items" json:"items"`
}

// TokenKind identifies the clickable role of an annotated span.
type TokenKind string

const (
	TokenPostRef    TokenKind = "post_ref"
	TokenQuoteLine  TokenKind = "quote_line"
	TokenPosterID   TokenKind = "poster_id"
	TokenURL        TokenKind = "url"
	TokenFileName   TokenKind = "file_name"
	TokenLikeMarker TokenKind = "like_marker"
)

// Token is a typed span of a post's rendered text. Start and End are byte
// offsets into the annotated string, End exclusive. Line is 0-based.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Value string    `json:"value"`
	Start int       `json:"start"`
	End   int       `json:"end"`
	Line  int       `json:"line"`
}

// Len returns the byte length of the token's span.
func (t Token) Len() int { return t.End - t.Start }

// ItemIDs flattens a result list to its ids.
func ItemIDs(items []Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}

// ParseItemKind converts a user-supplied kind name into an ItemKind.
func ParseItemKind(s string) (ItemKind, bool) {
	switch ItemKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindText:
		return KindText, true
	case KindImage:
		return KindImage, true
	case KindVideo:
		return KindVideo, true
	case KindEnd, "end_marker":
		return KindEnd, true
	}
	return "", false
}
