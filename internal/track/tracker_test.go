package track

import "testing"

// TestMapTracker_FirstDetectionSticks: the first detected map is adopted and
// later differing names are ignored until a game end arms the latch.
func TestMapTracker_FirstDetectionSticks(t *testing.T) {
	var tr MapTracker
	tr.Observe("Haven")
	tr.Observe("Ascent")
	if tr.Current() != "Haven" {
		t.Fatalf("current = %q, want Haven (no game end seen)", tr.Current())
	}
}

func TestMapTracker_SwitchAfterGameEnd(t *testing.T) {
	var tr MapTracker
	tr.Observe("Haven")
	tr.MarkGameEnd()
	tr.Observe("Ascent")
	if tr.Current() != "Ascent" {
		t.Fatalf("current = %q, want Ascent after game end", tr.Current())
	}

	// Latch cleared: a third name without another game end is ignored.
	tr.Observe("Bind")
	if tr.Current() != "Ascent" {
		t.Fatalf("current = %q, want Ascent (latch already consumed)", tr.Current())
	}
}

// TestMapTracker_SameNameKeepsLatch: re-seeing the current map does not
// consume the armed latch.
func TestMapTracker_SameNameKeepsLatch(t *testing.T) {
	var tr MapTracker
	tr.Observe("Haven")
	tr.MarkGameEnd()
	tr.Observe("Haven")
	tr.Observe("Ascent")
	if tr.Current() != "Ascent" {
		t.Fatalf("current = %q, want Ascent (latch survives same-name sightings)", tr.Current())
	}
}

func TestMapTracker_Active(t *testing.T) {
	var tr MapTracker
	tr.Observe("Haven")
	if got := tr.Active(""); got != "Haven" {
		t.Errorf("Active(\"\") = %q, want tracked Haven", got)
	}
	if got := tr.Active("Ascent"); got != "Ascent" {
		t.Errorf("Active(Ascent) = %q, want the detected name", got)
	}
}

func TestMapTracker_EmptyObservationsIgnored(t *testing.T) {
	var tr MapTracker
	tr.Observe("")
	if tr.Current() != "" {
		t.Fatal("empty observation set a map")
	}
	tr.Observe("Haven")
	tr.MarkGameEnd()
	tr.Observe("")
	tr.Observe("Ascent")
	if tr.Current() != "Ascent" {
		t.Fatalf("current = %q, want Ascent", tr.Current())
	}
}
