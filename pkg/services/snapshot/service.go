package snapshot

import (
	"context"
	"fmt"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
	"github.com/estafette/estafette-jenkins-exporter/pkg/clients/jenkinsapi"
	"github.com/estafette/estafette-jenkins-exporter/pkg/registry"
	foundation "github.com/estafette/estafette-foundation"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Service runs collect passes against the jenkins api and commits the
// resulting sample set to the metrics registry
//
//go:generate mockgen -package=snapshot -destination ./mock.go -source=service.go
type Service interface {
	Collect(ctx context.Context) (err error)
}

// NewService returns a snapshot.Service that collects via the jenkinsapi client
func NewService(config *api.APIConfig, jenkinsapiClient jenkinsapi.Client, metricsRegistry registry.Registry) Service {
	return &service{
		config:           config,
		jenkinsapiClient: jenkinsapiClient,
		metricsRegistry:  metricsRegistry,
	}
}

type service struct {
	config           *api.APIConfig
	jenkinsapiClient jenkinsapi.Client
	metricsRegistry  registry.Registry
}

func (s *service) Collect(ctx context.Context) (err error) {

	// a job list failure aborts the pass before any registry mutation
	jobs, err := s.jenkinsapiClient.GetJobs(ctx)
	if err != nil {
		return
	}

	jobSamples := make([][]registry.Sample, len(jobs))

	// a zero or negative limit would make every g.Go block forever
	maxConcurrentFetches := s.config.Scrape.MaxConcurrentFetches
	if maxConcurrentFetches <= 0 {
		maxConcurrentFetches = 10
	}

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentFetches)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			// per-job failures are handled inside collectJob and never fail the group
			jobSamples[i] = s.collectJob(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	// when the scrape deadline expired mid-pass the remaining fetches failed
	// on a cancelled context; committing now would publish a partial view
	if err = ctx.Err(); err != nil {
		return fmt.Errorf("Collect pass aborted before commit: %w", err)
	}

	samples := make([]registry.Sample, 0, len(jobs)*4)
	for _, js := range jobSamples {
		samples = append(samples, js...)
	}

	s.metricsRegistry.Commit(samples)

	return nil
}

func (s *service) collectJob(ctx context.Context, job jenkinsapi.Job) (samples []registry.Sample) {

	jobName := job.JobName()

	for _, status := range s.config.Scrape.BuildStatuses {
		build, err := s.jenkinsapiClient.GetBuild(ctx, job, status)
		if err != nil {
			log.Warn().Err(err).Str("job", jobName).Str("status", status).Msg("Failed retrieving build for job, skipping")
			continue
		}
		if build == nil {
			// the job has no build for this selector; absence emits no samples
			// so consumers can tell never-built apart from zero values
			continue
		}

		if status == "lastBuild" {
			samples = append(samples, s.lastBuildSamples(jobName, build)...)
		}
		samples = append(samples, s.statusSamples(jobName, status, build)...)
	}

	if s.config.Scrape.CollectRunTotals && job.TracksRuns() {
		builds, err := s.jenkinsapiClient.GetBuilds(ctx, job)
		if err != nil {
			log.Warn().Err(err).Str("job", jobName).Msg("Failed retrieving recorded builds for job, skipping run totals")
		} else {
			samples = append(samples, s.runTotalSamples(jobName, builds)...)
		}
	}

	return samples
}

// lastBuildSamples derives the primary per-job gauges from the last build
func (s *service) lastBuildSamples(jobName string, build *jenkinsapi.Build) (samples []registry.Sample) {

	labels := map[string]string{"job": jobName}

	if build.Duration != nil {
		samples = append(samples, registry.Sample{
			Name:   "jenkins_job_duration",
			Help:   "Duration of the last build in milliseconds.",
			Labels: labels,
			Value:  float64(*build.Duration),
		})
	}

	if build.Building != nil {
		building := 0.0
		if *build.Building {
			building = 1.0
		}
		samples = append(samples, registry.Sample{
			Name:   "jenkins_job_building",
			Help:   "Whether the job is currently building.",
			Labels: labels,
			Value:  building,
		})
	}

	if build.Result != nil {
		if !buildResultKnown(*build.Result) {
			log.Warn().Str("job", jobName).Str("result", *build.Result).Msg("Unknown build result, dropping result samples for job")
		} else {
			for _, result := range jenkinsapi.BuildResults {
				value := 0.0
				if result == *build.Result {
					value = 1.0
				}
				samples = append(samples, registry.Sample{
					Name:   "jenkins_job_last_build_result",
					Help:   "One-hot encoded result of the last build.",
					Labels: map[string]string{"job": jobName, "result": result},
					Value:  value,
				})
			}
		}
	}

	if build.Timestamp != nil {
		samples = append(samples, registry.Sample{
			Name:   "jenkins_job_last_build_timestamp",
			Help:   "Start timestamp of the last build in milliseconds since epoch.",
			Labels: labels,
			Value:  float64(*build.Timestamp),
		})
	}

	return samples
}

// statusSamples derives the per-status gauges for a build; fields jenkins
// does not report emit no samples
func (s *service) statusSamples(jobName, status string, build *jenkinsapi.Build) (samples []registry.Sample) {

	prefix := fmt.Sprintf("jenkins_job_%v", foundation.ToLowerSnakeCase(status))
	labels := map[string]string{"jobname": jobName}

	if build.Number != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_number",
			Help:   fmt.Sprintf("Jenkins build number for %v.", status),
			Labels: labels,
			Value:  float64(*build.Number),
		})
	}
	if build.Duration != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_duration_seconds",
			Help:   fmt.Sprintf("Jenkins build duration in seconds for %v.", status),
			Labels: labels,
			Value:  float64(*build.Duration) / 1000.0,
		})
	}
	if build.Timestamp != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_timestamp_seconds",
			Help:   fmt.Sprintf("Jenkins build timestamp in unixtime for %v.", status),
			Labels: labels,
			Value:  float64(*build.Timestamp) / 1000.0,
		})
	}

	// timing and test counts live in the build's action entries; take the
	// first action that reports each field
	var queuingDurationMillis, totalDurationMillis, skipCount, failCount, totalCount *int64
	for _, action := range build.Actions {
		if queuingDurationMillis == nil && action.QueuingDurationMillis != nil {
			queuingDurationMillis = action.QueuingDurationMillis
		}
		if totalDurationMillis == nil && action.TotalDurationMillis != nil {
			totalDurationMillis = action.TotalDurationMillis
		}
		if skipCount == nil && action.SkipCount != nil {
			skipCount = action.SkipCount
		}
		if failCount == nil && action.FailCount != nil {
			failCount = action.FailCount
		}
		if totalCount == nil && action.TotalCount != nil {
			totalCount = action.TotalCount
		}
	}

	if queuingDurationMillis != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_queuing_duration_seconds",
			Help:   fmt.Sprintf("Jenkins build queuing duration in seconds for %v.", status),
			Labels: labels,
			Value:  float64(*queuingDurationMillis) / 1000.0,
		})
	}
	if totalDurationMillis != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_total_duration_seconds",
			Help:   fmt.Sprintf("Jenkins build total duration in seconds for %v.", status),
			Labels: labels,
			Value:  float64(*totalDurationMillis) / 1000.0,
		})
	}
	if skipCount != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_skip_count",
			Help:   fmt.Sprintf("Jenkins build skip counts for %v.", status),
			Labels: labels,
			Value:  float64(*skipCount),
		})
	}
	if failCount != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_fail_count",
			Help:   fmt.Sprintf("Jenkins build fail counts for %v.", status),
			Labels: labels,
			Value:  float64(*failCount),
		})
	}
	if totalCount != nil {
		samples = append(samples, registry.Sample{
			Name:   prefix + "_total_count",
			Help:   fmt.Sprintf("Jenkins build total counts for %v.", status),
			Labels: labels,
			Value:  float64(*totalCount),
		})

		passCount := *totalCount
		if failCount != nil {
			passCount -= *failCount
		}
		if skipCount != nil {
			passCount -= *skipCount
		}
		samples = append(samples, registry.Sample{
			Name:   prefix + "_pass_count",
			Help:   fmt.Sprintf("Jenkins build pass counts for %v.", status),
			Labels: labels,
			Value:  float64(passCount),
		})
	}

	return samples
}

// runTotalSamples counts successful and failed runs over all recorded builds of a job
func (s *service) runTotalSamples(jobName string, builds []jenkinsapi.Build) (samples []registry.Sample) {

	if len(builds) == 0 {
		return
	}

	var successfulRuns, failedRuns int
	for _, build := range builds {
		if build.Result == nil {
			continue
		}
		switch *build.Result {
		case jenkinsapi.BuildResultSuccess:
			successfulRuns++
		case jenkinsapi.BuildResultFailure:
			failedRuns++
		}
	}

	labels := map[string]string{"jobname": jobName}

	samples = append(samples, registry.Sample{
		Name:   "jenkins_runs_successful_total",
		Help:   "Jenkins total job successful runs.",
		Labels: labels,
		Value:  float64(successfulRuns),
	})
	samples = append(samples, registry.Sample{
		Name:   "jenkins_runs_failed_total",
		Help:   "Jenkins total job failed runs.",
		Labels: labels,
		Value:  float64(failedRuns),
	})

	return samples
}

func buildResultKnown(result string) bool {
	for _, r := range jenkinsapi.BuildResults {
		if r == result {
			return true
		}
	}
	return false
}
