package health

import "context"

// DBPinger checks cache database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// LLMChecker checks language-model provider availability.
type LLMChecker interface {
	HealthCheck(ctx context.Context) error
}
