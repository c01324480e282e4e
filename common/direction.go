package common

import "github.com/go-gl/mathgl/mgl64"

// Direction is one of the six axis-aligned facings.
type Direction int

const (
	DirectionDown Direction = iota
	DirectionUp
	DirectionNorth
	DirectionSouth
	DirectionWest
	DirectionEast
)

// AllDirections lists the six facings in declaration order.
var AllDirections = [6]Direction{
	DirectionDown, DirectionUp, DirectionNorth, DirectionSouth, DirectionWest, DirectionEast,
}

var directionVectors = [6]mgl64.Vec3{
	DirectionDown:  {0, -1, 0},
	DirectionUp:    {0, 1, 0},
	DirectionNorth: {0, 0, -1},
	DirectionSouth: {0, 0, 1},
	DirectionWest:  {-1, 0, 0},
	DirectionEast:  {1, 0, 0},
}

var directionNames = [6]string{"down", "up", "north", "south", "west", "east"}

// Vector returns the unit vector pointing along the facing.
func (d Direction) Vector() mgl64.Vec3 {
	return directionVectors[d]
}

// Opposite returns the facing pointing the other way along the same axis.
func (d Direction) Opposite() Direction {
	return d ^ 1
}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "invalid"
	}
	return directionNames[d]
}

// DirectionFromVector snaps an arbitrary vector to the facing it points closest to.
// The facing with the largest dot product wins; ties resolve to the earlier facing in AllDirections,
// and the zero vector resolves to DirectionNorth.
//
// Parameters:
//   - v: the vector to classify
//
// Returns:
//   - Direction: the nearest axis facing
func DirectionFromVector(v mgl64.Vec3) Direction {
	best := DirectionNorth
	bestDot := 0.0
	for _, d := range AllDirections {
		dot := v.Dot(d.Vector())
		if dot > bestDot {
			bestDot = dot
			best = d
		}
	}
	return best
}
