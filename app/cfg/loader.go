package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	DefaultURL         = "https://gwern.net/changelog"
	DefaultContainerID = "markdownBody"
	DefaultOutputPath  = "feed.rss"
	DefaultMaxEntries  = 20
	DefaultMinSections = 5
)

type rawCfg struct {
	// Source document
	URL         string `long:"url" env:"CHANGELOG_URL" default:"https://gwern.net/changelog" description:"Changelog page to convert"`
	ContainerID string `long:"container-id" env:"CONTAINER_ID" default:"markdownBody" description:"id of the element holding the changelog content"`

	// Extraction limits
	MaxEntries  int `long:"max-entries" env:"MAX_ENTRIES" default:"20" description:"Stop reading year sections once more than this many updates were collected"`
	MinSections int `long:"min-sections" env:"MIN_SECTIONS" default:"5" description:"Minimum number of year sections expected on the page"`

	// HTTP
	Timeout   int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP timeout in seconds"`
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Changelog-RSS/1.0" description:"User agent string for HTTP requests"`

	// Output
	OutputPath    string `long:"output" env:"OUTPUT_PATH" default:"feed.rss" description:"Path of the RSS file to write"`
	SelfURL       string `long:"self-url" env:"SELF_URL" description:"Public URL of the generated feed (adds atom:link rel=self)"`
	ChannelConfig string `long:"channel-config" env:"CHANNEL_CONFIG" description:"YAML file overriding channel metadata"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" description:"Timezone for entry dates (e.g., UTC, America/New_York); system zone when empty"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args and environment variables. It returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.MaxEntries < 0 {
		return nil, fmt.Errorf("max entries must be non-negative")
	}
	if raw.MinSections < 0 {
		return nil, fmt.Errorf("min sections must be non-negative")
	}
	if raw.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be non-negative")
	}

	channel := DefaultChannel(raw.URL)
	if raw.ChannelConfig != "" {
		loaded, err := LoadChannel(raw.ChannelConfig, raw.URL)
		if err != nil {
			return nil, err
		}
		channel = *loaded
	}

	cfg := &Cfg{
		URL:         raw.URL,
		ContainerID: raw.ContainerID,
		MaxEntries:  raw.MaxEntries,
		MinSections: raw.MinSections,
		Timeout:     raw.Timeout,
		UserAgent:   raw.UserAgent,
		OutputPath:  raw.OutputPath,
		SelfURL:     raw.SelfURL,
		Channel:     channel,
		Timezone:    raw.Timezone,
		Debug:       raw.Debug,
		Version:     GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

// GetTimeout returns the HTTP timeout as time.Duration
func (c *Cfg) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
