package cfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultChannel returns the channel metadata used when no channel file is given.
func DefaultChannel(url string) Channel {
	return Channel{
		Title:            "Gwern Changelog",
		Link:             url,
		Description:      fmt.Sprintf("A feed trying its best to mirror the content at %s", url),
		Language:         "en",
		AuthorName:       "Gwern Branwen",
		AuthorEmail:      "gwern@gwern.net",
		ContributorName:  "Gwern Branwen",
		ContributorEmail: "gwern@gwern.net",
	}
}

// LoadChannel reads channel metadata from a YAML file. Missing fields fall back to DefaultChannel.
func LoadChannel(path, url string) (*Channel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel config: %w", err)
	}

	var channel Channel
	if err := yaml.Unmarshal(data, &channel); err != nil {
		return nil, fmt.Errorf("failed to parse channel config %s: %w", path, err)
	}

	setDefaults(&channel, DefaultChannel(url))

	return &channel, nil
}

func setDefaults(channel *Channel, defaults Channel) {
	if channel.Title == "" {
		channel.Title = defaults.Title
	}
	if channel.Link == "" {
		channel.Link = defaults.Link
	}
	if channel.Description == "" {
		channel.Description = defaults.Description
	}
	if channel.Language == "" {
		channel.Language = defaults.Language
	}
	if channel.AuthorName == "" && channel.AuthorEmail == "" {
		channel.AuthorName = defaults.AuthorName
		channel.AuthorEmail = defaults.AuthorEmail
	}
	if channel.ContributorName == "" && channel.ContributorEmail == "" {
		channel.ContributorName = channel.AuthorName
		channel.ContributorEmail = channel.AuthorEmail
	}
}
