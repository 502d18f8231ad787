package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/citation-ranker/internal/archive"
	"github.com/pdiddy/citation-ranker/internal/browser"
	"github.com/pdiddy/citation-ranker/internal/checkpoint"
	"github.com/pdiddy/citation-ranker/internal/endpoint"
	"github.com/pdiddy/citation-ranker/internal/enrich"
	"github.com/pdiddy/citation-ranker/internal/venue"
	"github.com/pdiddy/citation-ranker/pkg/types"
)

func setDefaults() {
	viper.SetDefault("enrich.delay", enrich.DefaultDelay)
	viper.SetDefault("enrich.endpoints", endpoint.DefaultHosts)
	viper.SetDefault("enrich.query_template", endpoint.DefaultTemplate)

	viper.SetDefault("checkpoint.path", checkpoint.DefaultPath)

	viper.SetDefault("export.csv_dir", ".")
	viper.SetDefault("export.archive", archive.DefaultPath)

	viper.SetDefault("browser.driver", string(types.DriverChrome))
	viper.SetDefault("browser.headless", false)
	viper.SetDefault("browser.timeout", 60*time.Second)
	viper.SetDefault("browser.user_agent", browser.DefaultUserAgent)
	viper.SetDefault("browser.chrome_path", "")

	viper.SetDefault("venues.workers", venue.DefaultWorkers)
	viper.SetDefault("venues.fetch_interval", 250*time.Millisecond)
	viper.SetDefault("venues.timeout", 60*time.Second)
	viper.SetDefault("venues.user_agent", venue.DefaultUserAgent)
}

// loadConfig decodes the merged defaults, config file and environment.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}
