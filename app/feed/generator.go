package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/changelog-rss/app/cfg"
	"github.com/lysyi3m/changelog-rss/app/changelog"
)

type Generator struct {
	channel cfg.Channel
	selfURL string
	version string
	now     func() time.Time
}

func NewGenerator(channel cfg.Channel, selfURL string, version string) *Generator {
	return &Generator{
		channel: channel,
		selfURL: selfURL,
		version: version,
		now:     time.Now,
	}
}

// Run renders updates, in the given order, as an indented RSS 2.0 document.
func (g *Generator) Run(updates []changelog.Update) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", g.channel.Title, 4)
	g.writeElement(&buf, "link", g.channel.Link, 4)
	g.writeElement(&buf, "description", g.channel.Description, 4)

	if g.selfURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(g.selfURL)))
	}

	g.writeElement(&buf, "lastBuildDate", g.now().Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Changelog-RSS/%s", cmp.Or(g.version, "dev")), 4)
	g.writeElement(&buf, "language", g.channel.Language, 4)
	g.writeElement(&buf, "managingEditor", formatAuthor(g.channel.AuthorName, g.channel.AuthorEmail), 4)
	g.writeElement(&buf, "webMaster", formatAuthor(g.channel.ContributorName, g.channel.ContributorEmail), 4)

	for _, update := range updates {
		g.writeItem(&buf, update)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, update changelog.Update) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", update.Month, 6)
	g.writeElement(buf, "link", update.Link, 6)

	if update.Link != "" {
		buf.WriteString("      <guid isPermaLink=\"true\">")
		xml.EscapeText(buf, []byte(update.Link))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "description", cmp.Or(update.Summary(), update.Month), 6)
	g.writeElement(buf, "author", formatAuthor(g.channel.AuthorName, g.channel.AuthorEmail), 6)

	if update.Changes != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(escapeCDATA(update.Changes))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", update.Date.Format(time.RFC1123Z), 6)

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// escapeCDATA splits any "]]>" so content cannot close the CDATA section early.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}

// formatAuthor renders an RSS author field, "email (name)".
func formatAuthor(name, email string) string {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	switch {
	case name != "" && email != "":
		return fmt.Sprintf("%s (%s)", email, name)
	case email != "":
		return email
	default:
		return name
	}
}
