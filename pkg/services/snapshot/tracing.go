package snapshot

import (
	"context"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
	"github.com/opentracing/opentracing-go"
)

// NewTracingService returns a new instance of a tracing Service.
func NewTracingService(s Service) Service {
	return &tracingService{s, "snapshot"}
}

type tracingService struct {
	Service Service
	prefix  string
}

func (s *tracingService) Collect(ctx context.Context) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, api.GetSpanName(s.prefix, "Collect"))
	defer func() { api.FinishSpanWithError(span, err) }()

	return s.Service.Collect(ctx)
}
