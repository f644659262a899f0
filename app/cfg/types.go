package cfg

type Cfg struct {
	// Source document
	URL         string
	ContainerID string

	// Extraction limits
	MaxEntries  int
	MinSections int

	// HTTP
	Timeout   int // seconds
	UserAgent string

	// Output
	OutputPath string
	SelfURL    string
	Channel    Channel

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

// Channel holds the fixed channel-level metadata of the generated feed.
type Channel struct {
	Title            string `yaml:"title"`
	Link             string `yaml:"link"`
	Description      string `yaml:"description"`
	Language         string `yaml:"language"`
	AuthorName       string `yaml:"author_name"`
	AuthorEmail      string `yaml:"author_email"`
	ContributorName  string `yaml:"contributor_name"`
	ContributorEmail string `yaml:"contributor_email"`
}
