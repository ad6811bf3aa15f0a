package structure

import "testing"

func TestDetectCyclesTriangle(t *testing.T) {
	prereqs := map[string][]string{
		"A": {"B"},
		"B": {"C"},
		"C": {"A"},
	}
	topics := []string{"A", "B", "C"}

	cycles := DetectCycles(prereqs, topics)
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d, want 1", len(cycles))
	}

	members := make(map[string]bool)
	for _, n := range cycles[0] {
		members[n] = true
	}
	for _, want := range topics {
		if !members[want] {
			t.Errorf("cycle %v missing %s", cycles[0], want)
		}
	}
	if first, last := cycles[0][0], cycles[0][len(cycles[0])-1]; first != last {
		t.Errorf("cycle should close on itself: %v", cycles[0])
	}
}

func TestDetectCyclesAcyclic(t *testing.T) {
	prereqs := map[string][]string{
		"Channels":   {"Goroutines"},
		"Select":     {"Channels"},
		"Goroutines": {},
	}
	topics := []string{"Goroutines", "Channels", "Select"}

	if cycles := DetectCycles(prereqs, topics); len(cycles) != 0 {
		t.Errorf("cycles = %v, want none", cycles)
	}
}

func TestDetectCyclesSelfLoop(t *testing.T) {
	prereqs := map[string][]string{"A": {"A"}}
	cycles := DetectCycles(prereqs, []string{"A"})
	if len(cycles) != 1 {
		t.Fatalf("cycles = %d, want 1", len(cycles))
	}
}

func TestDetectCyclesIgnoresUnknownTitles(t *testing.T) {
	// "Algebra" is not a known topic; the edge through it must not
	// produce a cycle or a crash.
	prereqs := map[string][]string{
		"A": {"Algebra"},
		"B": {"A"},
	}
	if cycles := DetectCycles(prereqs, []string{"A", "B"}); len(cycles) != 0 {
		t.Errorf("cycles = %v, want none", cycles)
	}
}

func TestUnknownRefs(t *testing.T) {
	prereqs := map[string][]string{
		"A": {"Algebra", "B"},
		"B": {"Algebra"},
	}
	unknown := UnknownRefs(prereqs, []string{"A", "B"})
	if len(unknown) != 1 || unknown[0] != "Algebra" {
		t.Errorf("unknown = %v, want [Algebra] once", unknown)
	}
}

func TestOrphans(t *testing.T) {
	prereqs := map[string][]string{
		"B": {"A"},
	}
	topics := []string{"A", "B", "C"}

	orphans := Orphans(prereqs, topics)
	if len(orphans) != 1 || orphans[0] != "C" {
		t.Errorf("orphans = %v, want [C]", orphans)
	}
}

func TestOrphansFirstTopicExcluded(t *testing.T) {
	topics := []string{"Intro", "Advanced"}
	prereqs := map[string][]string{"Advanced": {"Intro"}}

	if orphans := Orphans(prereqs, topics); len(orphans) != 0 {
		t.Errorf("orphans = %v, want none", orphans)
	}
}

func TestReachableFrom(t *testing.T) {
	prereqs := map[string][]string{
		"B": {"A"},
		"C": {"B"},
		// D is disconnected.
	}
	topics := []string{"A", "B", "C", "D"}

	reached := ReachableFrom("A", prereqs, topics)
	for _, want := range []string{"A", "B", "C"} {
		if !reached[want] {
			t.Errorf("%s not reached", want)
		}
	}
	if reached["D"] {
		t.Error("D should be unreachable")
	}
}
