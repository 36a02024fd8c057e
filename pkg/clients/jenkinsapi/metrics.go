package jenkinsapi

import (
	"context"
	"time"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
	"github.com/go-kit/kit/metrics"
)

// NewMetricsClient returns a new instance of a metrics Client.
func NewMetricsClient(c Client, requestCount metrics.Counter, requestLatency metrics.Histogram) Client {
	return &metricsClient{c, requestCount, requestLatency}
}

type metricsClient struct {
	Client         Client
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
}

func (c *metricsClient) GetJobs(ctx context.Context) (jobs []Job, err error) {
	defer func(begin time.Time) {
		api.UpdateMetrics(c.requestCount, c.requestLatency, "GetJobs", begin)
	}(time.Now())

	return c.Client.GetJobs(ctx)
}

func (c *metricsClient) GetBuild(ctx context.Context, job Job, status string) (build *Build, err error) {
	defer func(begin time.Time) {
		api.UpdateMetrics(c.requestCount, c.requestLatency, "GetBuild", begin)
	}(time.Now())

	return c.Client.GetBuild(ctx, job, status)
}

func (c *metricsClient) GetBuilds(ctx context.Context, job Job) (builds []Build, err error) {
	defer func(begin time.Time) {
		api.UpdateMetrics(c.requestCount, c.requestLatency, "GetBuilds", begin)
	}(time.Now())

	return c.Client.GetBuilds(ctx, job)
}
