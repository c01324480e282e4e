package visibility

import "log/slog"

// CullerBuilderOption is a functional option for configuring a Culler.
// Use the With* functions to create options.
type CullerBuilderOption func(c *cullerImpl)

// WithWorkers sets the number of worker goroutines used by CullUnits. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - CullerBuilderOption: option function to apply
func WithWorkers(n int) CullerBuilderOption {
	return func(c *cullerImpl) {
		c.workers = max(n, 1)
	}
}

// WithBatchSize sets how many render units one worker task tests. Inputs no larger than one batch are
// tested on the calling goroutine. Defaults to DefaultBatchSize.
//
// Parameters:
//   - n: units per task (minimum 1)
//
// Returns:
//   - CullerBuilderOption: option function to apply
func WithBatchSize(n int) CullerBuilderOption {
	return func(c *cullerImpl) {
		c.batchSize = max(n, 1)
	}
}

// WithLogger sets the logger used for misprediction diagnostics.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - CullerBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) CullerBuilderOption {
	return func(c *cullerImpl) {
		c.logger = logger
	}
}
