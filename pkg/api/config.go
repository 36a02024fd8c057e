package api

import (
	"errors"
	"strings"
)

var (
	// ErrMissingJenkinsURL indicates no jenkins server url has been configured
	ErrMissingJenkinsURL = errors.New("jenkins server url is not configured")
	// ErrUnknownBuildStatus indicates a configured build status selector is not a known jenkins selector
	ErrUnknownBuildStatus = errors.New("unknown jenkins build status selector")
)

// BuildStatuses are the jenkins build status selectors that can be scraped per job
var BuildStatuses = []string{
	"lastBuild",
	"lastCompletedBuild",
	"lastFailedBuild",
	"lastStableBuild",
	"lastSuccessfulBuild",
	"lastUnstableBuild",
	"lastUnsuccessfulBuild",
}

// APIConfig groups all configuration for the exporter
type APIConfig struct {
	Jenkins *JenkinsConfig
	Scrape  *ScrapeConfig
}

// JenkinsConfig configures the connection towards the jenkins server
type JenkinsConfig struct {
	ServerURL             string
	Username              string
	Password              string
	AllowInsecure         bool
	RequestTimeoutSeconds int
	RequestRetries        int
}

// ScrapeConfig configures the behaviour of one collect pass
type ScrapeConfig struct {
	DeadlineSeconds      int
	MaxConcurrentFetches int
	ServeStaleOnFailure  bool
	BuildStatuses        []string
	CollectRunTotals     bool
}

// Validate checks whether the config can be used to collect from jenkins
func (config *APIConfig) Validate() (err error) {

	if config.Jenkins == nil || config.Jenkins.ServerURL == "" {
		return ErrMissingJenkinsURL
	}

	if config.Scrape != nil {
		for _, status := range config.Scrape.BuildStatuses {
			if !stringArrayContains(BuildStatuses, status) {
				return ErrUnknownBuildStatus
			}
		}
	}

	return nil
}

// SetDefaults sets defaults for unset config properties
func (config *APIConfig) SetDefaults() {

	if config.Jenkins != nil {
		config.Jenkins.ServerURL = strings.TrimRight(config.Jenkins.ServerURL, "/")
		if config.Jenkins.RequestTimeoutSeconds <= 0 {
			config.Jenkins.RequestTimeoutSeconds = 10
		}
		if config.Jenkins.RequestRetries < 0 {
			config.Jenkins.RequestRetries = 0
		}
	}

	if config.Scrape != nil {
		if config.Scrape.DeadlineSeconds <= 0 {
			config.Scrape.DeadlineSeconds = 30
		}
		if config.Scrape.MaxConcurrentFetches <= 0 {
			config.Scrape.MaxConcurrentFetches = 10
		}
		if len(config.Scrape.BuildStatuses) == 0 {
			config.Scrape.BuildStatuses = BuildStatuses
		}
	}
}

func stringArrayContains(array []string, value string) bool {
	for _, v := range array {
		if v == value {
			return true
		}
	}
	return false
}
