package types

type RunMode string

const (
	// ModeLocal is the mode for running the billing engine with local defaults
	ModeLocal RunMode = "local"
	// ModeWorker is the mode for running the recurring invoice worker
	ModeWorker RunMode = "worker"
	// ModeAPI is the mode for running the API server that fronts the engine
	ModeAPI RunMode = "api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)
