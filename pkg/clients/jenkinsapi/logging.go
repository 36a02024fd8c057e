package jenkinsapi

import (
	"context"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
)

// NewLoggingClient returns a new instance of a logging Client.
func NewLoggingClient(c Client) Client {
	return &loggingClient{c, "jenkinsapi"}
}

type loggingClient struct {
	Client Client
	prefix string
}

func (c *loggingClient) GetJobs(ctx context.Context) (jobs []Job, err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "GetJobs", err) }()

	return c.Client.GetJobs(ctx)
}

func (c *loggingClient) GetBuild(ctx context.Context, job Job, status string) (build *Build, err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "GetBuild", err) }()

	return c.Client.GetBuild(ctx, job, status)
}

func (c *loggingClient) GetBuilds(ctx context.Context, job Job) (builds []Build, err error) {
	defer func() { api.HandleLogError(c.prefix, "Client", "GetBuilds", err) }()

	return c.Client.GetBuilds(ctx, job)
}
