package portal

import (
	"strings"

	"github.com/google/uuid"
)

// Descriptor is the ordered list of portal identities along a recursive render path, outermost first.
// Two descriptors are equal when they list the same identities in the same order.
type Descriptor []uuid.UUID

// DescriptorKey is the comparable form of a Descriptor, usable as a map key.
type DescriptorKey string

// NewDescriptor builds a descriptor from the portals along a render path.
//
// Parameters:
//   - path: the portals from outermost to innermost
//
// Returns:
//   - Descriptor: the identities of the path
func NewDescriptor(path ...PortalLike) Descriptor {
	d := make(Descriptor, len(path))
	for i, p := range path {
		d[i] = p.Discriminator()
	}
	return d
}

// Key packs the identities into a DescriptorKey. Equal descriptors always produce equal keys.
func (d Descriptor) Key() DescriptorKey {
	var sb strings.Builder
	sb.Grow(len(d) * 16)
	for _, id := range d {
		sb.Write(id[:])
	}
	return DescriptorKey(sb.String())
}

// Child returns a new descriptor extending d by one more level. d is not modified.
func (d Descriptor) Child(p PortalLike) Descriptor {
	out := make(Descriptor, len(d), len(d)+1)
	copy(out, d)
	return append(out, p.Discriminator())
}

func (d Descriptor) String() string {
	parts := make([]string, len(d))
	for i, id := range d {
		parts[i] = id.String()
	}
	return "[" + strings.Join(parts, " > ") + "]"
}
