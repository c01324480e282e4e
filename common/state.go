package common

// TriState is a boolean that may not be known yet.
type TriState uint8

const (
	// Unknown means no value has been recorded.
	Unknown TriState = iota
	// True is a recorded true value.
	True
	// False is a recorded false value.
	False
)

// TriStateOf converts a known boolean into a TriState.
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

// Known reports whether a value has been recorded.
func (t TriState) Known() bool {
	return t != Unknown
}

// Bool returns the recorded value and whether one exists.
//
// Returns:
//   - bool: the recorded value (false when unknown)
//   - bool: true if the value is known
func (t TriState) Bool() (bool, bool) {
	return t == True, t != Unknown
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

type cachedState uint8

const (
	cachedNotComputed cachedState = iota
	cachedAbsent
	cachedPresent
)

// Cached is a lazily derived value that distinguishes "not yet computed" from "computed and absent".
// The zero value is NotComputed.
type Cached[T any] struct {
	state cachedState
	value T
}

// Computed reports whether a result, present or absent, has been stored.
func (c *Cached[T]) Computed() bool {
	return c.state != cachedNotComputed
}

// Get returns the stored value and whether it is present.
// A NotComputed or Absent cache both return the zero value and false; use Computed to tell them apart.
//
// Returns:
//   - T: the stored value or the zero value
//   - bool: true only if a value is present
func (c *Cached[T]) Get() (T, bool) {
	return c.value, c.state == cachedPresent
}

// SetPresent stores a present value.
func (c *Cached[T]) SetPresent(v T) {
	c.state = cachedPresent
	c.value = v
}

// SetAbsent records that the value was computed and does not exist.
func (c *Cached[T]) SetAbsent() {
	var zero T
	c.state = cachedAbsent
	c.value = zero
}

// Reset returns the cache to NotComputed.
func (c *Cached[T]) Reset() {
	var zero T
	c.state = cachedNotComputed
	c.value = zero
}
