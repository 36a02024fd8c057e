package snapshot

import (
	"context"

	"github.com/estafette/estafette-jenkins-exporter/pkg/api"
)

// NewLoggingService returns a new instance of a logging Service.
func NewLoggingService(s Service) Service {
	return &loggingService{s, "snapshot"}
}

type loggingService struct {
	Service Service
	prefix  string
}

func (s *loggingService) Collect(ctx context.Context) (err error) {
	defer func() { api.HandleLogError(s.prefix, "Service", "Collect", err) }()

	return s.Service.Collect(ctx)
}
