package scanid

import "testing"

func TestNew(t *testing.T) {
	a, b := New(), New()
	if a == b {
		t.Errorf("New returned the same id twice: %q", a)
	}
	if !Valid(a) {
		t.Errorf("New id %q is not valid", a)
	}
}

func TestFromPath(t *testing.T) {
	id1 := FromPath("/inbox/analyst.md")
	id2 := FromPath("/inbox/analyst.md")
	if id1 != id2 {
		t.Errorf("same path should give same ID: %q vs %q", id1, id2)
	}
	if !Valid(id1) {
		t.Errorf("FromPath id %q is not valid", id1)
	}
	if FromPath("/inbox/analyst.md") == FromPath("/inbox/manager.md") {
		t.Error("different paths should give different IDs")
	}
}

func TestFromPath_normalized(t *testing.T) {
	id := FromPath("/inbox/jobs")
	for _, p := range []string{"/inbox/jobs/", "/inbox/./jobs", "/inbox/x/../jobs"} {
		if FromPath(p) != id {
			t.Errorf("%q should normalize to the same ID", p)
		}
	}
}

func TestValid(t *testing.T) {
	for _, id := range []string{"", "abc", "file:123", "123e4567-e89b-12d3-a456-42661417400"} {
		if Valid(id) {
			t.Errorf("Valid(%q) = true", id)
		}
	}
	if !Valid("123e4567-e89b-12d3-a456-426614174000") {
		t.Error("canonical uuid rejected")
	}
}
