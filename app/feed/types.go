package feed

import (
	"time"
)

// Entry is an item read back from a rendered feed.
type Entry struct {
	GUID        string
	Title       string
	Link        string
	Content     string // content:encoded
	PublishedAt time.Time
}
