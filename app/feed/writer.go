package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lysyi3m/changelog-rss/app/changelog"
)

type Writer struct {
	path   string
	parser *Parser
}

func NewWriter(path string) *Writer {
	return &Writer{
		path:   path,
		parser: NewParser(),
	}
}

// Run reads rss back, checks it holds exactly one entry per update in order,
// and writes it to the configured path. The file is replaced atomically; on
// failure any existing file is left untouched.
func (w *Writer) Run(rss string, updates []changelog.Update) error {
	entries, err := w.parser.Run([]byte(rss))
	if err != nil {
		return changelog.NewError(changelog.KindOutput, err, "generated feed is not valid RSS")
	}

	if err := verifyEntries(entries, updates); err != nil {
		return changelog.NewError(changelog.KindOutput, err, "generated feed does not match the extracted updates")
	}

	if err := w.write([]byte(rss)); err != nil {
		return changelog.NewError(changelog.KindOutput, err, "could not write feed to %s", w.path)
	}

	slog.Info("Feed written", "path", w.path, "items", len(entries), "bytes", len(rss))
	return nil
}

// verifyEntries checks that entries match updates one to one, in order.
func verifyEntries(entries []Entry, updates []changelog.Update) error {
	if len(entries) != len(updates) {
		return fmt.Errorf("expected %d entries, found %d", len(updates), len(entries))
	}

	for i, entry := range entries {
		update := updates[i]

		if entry.Link != update.Link {
			return fmt.Errorf("entry %d links to %q, expected %q", i, entry.Link, update.Link)
		}
		if entry.GUID != update.Link {
			return fmt.Errorf("entry %d has guid %q, expected %q", i, entry.GUID, update.Link)
		}
		if entry.Title != strings.TrimSpace(update.Month) {
			return fmt.Errorf("entry %d is titled %q, expected %q", i, entry.Title, update.Month)
		}
		if entry.Content != strings.TrimSpace(update.Changes) {
			return fmt.Errorf("entry %d content differs from the month's list", i)
		}
		if !entry.PublishedAt.Equal(update.Date) {
			return fmt.Errorf("entry %d published %v, expected %v", i, entry.PublishedAt, update.Date)
		}
	}

	return nil
}

func (w *Writer) write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".feed-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("failed to move feed into place: %w", err)
	}

	return nil
}
