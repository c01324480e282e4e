package query

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-portal/common"
)

// PoolBuilderOption is a functional option for configuring a Pool.
// Use the With* functions to create options.
type PoolBuilderOption func(p *poolImpl)

// WithPageSize sets how many slots each page holds. Zero keeps DefaultPageSize.
//
// Parameters:
//   - size: slots per page
//
// Returns:
//   - PoolBuilderOption: option function to apply
func WithPageSize(size uint32) PoolBuilderOption {
	return func(p *poolImpl) {
		p.pageSize = common.Coalesce(size, DefaultPageSize)
	}
}

// WithLabel sets the label the pool reports itself under in diagnostics.
//
// Parameters:
//   - label: pool label; empty keeps DefaultLabel
//
// Returns:
//   - PoolBuilderOption: option function to apply
func WithLabel(label string) PoolBuilderOption {
	return func(p *poolImpl) {
		p.label = common.Coalesce(label, DefaultLabel)
	}
}

// WithLogger sets the logger used for pool diagnostics.
//
// Parameters:
//   - logger: destination logger
//
// Returns:
//   - PoolBuilderOption: option function to apply
func WithLogger(logger *slog.Logger) PoolBuilderOption {
	return func(p *poolImpl) {
		p.logger = logger
	}
}
