package common

import "testing"

func TestTriState(t *testing.T) {
	var s TriState
	if s != Unknown || s.Known() {
		t.Fatalf("zero TriState = %v, want unknown", s)
	}
	if v, ok := s.Bool(); v || ok {
		t.Errorf("Unknown.Bool() = %v, %v", v, ok)
	}
	if v, ok := TriStateOf(true).Bool(); !v || !ok {
		t.Errorf("TriStateOf(true).Bool() = %v, %v", v, ok)
	}
	if v, ok := TriStateOf(false).Bool(); v || !ok {
		t.Errorf("TriStateOf(false).Bool() = %v, %v", v, ok)
	}
}

func TestCachedStates(t *testing.T) {
	var c Cached[int]
	if c.Computed() {
		t.Fatal("zero Cached reports computed")
	}

	c.SetAbsent()
	if !c.Computed() {
		t.Error("absent value should count as computed")
	}
	if _, ok := c.Get(); ok {
		t.Error("absent value reported present")
	}

	c.SetPresent(7)
	if v, ok := c.Get(); !ok || v != 7 {
		t.Errorf("Get = %v, %v, want 7, true", v, ok)
	}

	c.Reset()
	if c.Computed() {
		t.Error("Reset did not return to not computed")
	}
	if v, ok := c.Get(); ok || v != 0 {
		t.Errorf("Get after Reset = %v, %v", v, ok)
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce(0, 0, 3, 4); got != 3 {
		t.Errorf("Coalesce ints = %d, want 3", got)
	}
	if got := Coalesce("", "label"); got != "label" {
		t.Errorf("Coalesce strings = %q", got)
	}
	if got := Coalesce[uint32](); got != 0 {
		t.Errorf("Coalesce of nothing = %d", got)
	}
}
