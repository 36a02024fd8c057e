package jenkinsapi

import (
	"context"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingClient returns a new instance of a tracing Client.
func NewTracingClient(c Client) Client {
	return &tracingClient{c, "jenkinsapi"}
}

type tracingClient struct {
	Client Client
	prefix string
}

func (c *tracingClient) GetJobs(ctx context.Context) (jobs []Job, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "GetJobs"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.GetJobs(ctx)
}

func (c *tracingClient) GetBuild(ctx context.Context, job Job, status string) (build *Build, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "GetBuild"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.GetBuild(ctx, job, status)
}

func (c *tracingClient) GetBuilds(ctx context.Context, job Job) (builds []Build, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(c.prefix, "GetBuilds"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return c.Client.GetBuilds(ctx, job)
}
