package portal

import (
	"github.com/Carmen-Shannon/oxy-portal/engine/logging"
	"github.com/google/uuid"
)

// GroupBuilderOption is a functional option for configuring a Group.
type GroupBuilderOption func(g *Group)

// WithGroupID sets the group discriminator instead of generating a random one.
//
// Parameters:
//   - id: the discriminator
//
// Returns:
//   - GroupBuilderOption: option function to apply
func WithGroupID(id uuid.UUID) GroupBuilderOption {
	return func(g *Group) {
		g.id = id
	}
}

// WithGroupWorld pins the world members must stand in. Without it the first member decides.
//
// Parameters:
//   - world: the origin world of every member
//
// Returns:
//   - GroupBuilderOption: option function to apply
func WithGroupWorld(world WorldID) GroupBuilderOption {
	return func(g *Group) {
		g.world = world
	}
}

// WithGroupLogger replaces the shared rate-limited logger used for rejected operations.
//
// Parameters:
//   - l: the limited logger
//
// Returns:
//   - GroupBuilderOption: option function to apply
func WithGroupLogger(l *logging.LimitedLogger) GroupBuilderOption {
	return func(g *Group) {
		if l != nil {
			g.logger = l
		}
	}
}
