package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser reads a rendered feed back so it can be checked before it is written.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) ([]Entry, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		entry := Entry{
			GUID:    item.GUID,
			Title:   strings.TrimSpace(item.Title),
			Link:    item.Link,
			Content: item.Content,
		}
		if item.PublishedParsed != nil {
			entry.PublishedAt = *item.PublishedParsed
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
