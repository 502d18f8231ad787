package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// EnrichConfig holds settings for the citation enrichment stage.
type EnrichConfig struct {
	// Delay is the pause between consecutive papers (default 500ms).
	Delay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// Endpoints lists the query hosts in fallback order.
	Endpoints []string `json:"endpoints" yaml:"endpoints" mapstructure:"endpoints"`

	// QueryTemplate is a format string taking the host and the encoded search
	// term, in that order.
	QueryTemplate string `json:"query_template" yaml:"query_template" mapstructure:"query_template"`
}

// CheckpointConfig holds settings for the checkpoint store.
type CheckpointConfig struct {
	// Path is the checkpoint file (default temp/backup.yaml).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// BrowserDriver selects the browsing-session implementation.
type BrowserDriver string

const (
	DriverChrome BrowserDriver = "chrome"
	DriverHTTP   BrowserDriver = "http"
)

// BrowserConfig holds settings for the browsing session used by enrichment.
type BrowserConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Driver selects chrome (visible, operator can solve challenges in place)
	// or http (cookie-jar client).
	Driver BrowserDriver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Headless hides the Chrome window. Challenges cannot be solved headless.
	Headless bool `json:"headless" yaml:"headless" mapstructure:"headless"`

	// ChromePath overrides the Chrome executable lookup.
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty" mapstructure:"chrome_path"`
}

// VenueConfig holds settings for the proceedings collectors.
type VenueConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Workers bounds concurrent proceedings-page fetches (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// FetchInterval is the minimum spacing between requests to one host.
	FetchInterval time.Duration `json:"fetch_interval" yaml:"fetch_interval" mapstructure:"fetch_interval"`
}

// ExportConfig holds settings for ranking export.
type ExportConfig struct {
	// CSVDir is the directory receiving {conference}{year}.csv.
	CSVDir string `json:"csv_dir" yaml:"csv_dir" mapstructure:"csv_dir"`

	// Archive is the SQLite database recording every exported ranking.
	// Empty disables archiving.
	Archive string `json:"archive" yaml:"archive" mapstructure:"archive"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Enrich     EnrichConfig     `json:"enrich" yaml:"enrich" mapstructure:"enrich"`
	Checkpoint CheckpointConfig `json:"checkpoint" yaml:"checkpoint" mapstructure:"checkpoint"`
	Browser    BrowserConfig    `json:"browser" yaml:"browser" mapstructure:"browser"`
	Venues     VenueConfig      `json:"venues" yaml:"venues" mapstructure:"venues"`
	Export     ExportConfig     `json:"export" yaml:"export" mapstructure:"export"`
}
