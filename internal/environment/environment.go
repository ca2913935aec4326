package environment

import (
	"career-ebook-generator/internal/database"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/metrics"
)

// Env provides access to shared resources such as the session repository, logging
// and metrics. It is embedded in higher-level components that require infrastructure dependencies.
type Env struct {
	database.Repository
	logging.Logger
	metrics.Recorder
}

// Environment constructs a new Env instance using the provided dependencies.
// If a parameter is nil, a no-op implementation is substituted.
//
// param repository a session repository implementation or nil
// param logger a logging implementation or nil
// param recorder a metrics recorder or nil
// return a fully initialized *Env with fallback defaults
func Environment(repository database.Repository, logger logging.Logger, recorder metrics.Recorder) *Env {
	if repository == nil {
		repository = &database.NullRepository{}
	}

	if logger == nil {
		logger = &logging.NullLogger{}
	}

	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	return &Env{repository, logger, recorder}
}

// Null returns an Env with no-op implementations for all dependencies.
// Useful for testing or as a stub in wiring graphs.
func Null() *Env {
	return Environment(nil, nil, nil)
}
