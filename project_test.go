package sequencer

import "testing"

func TestNewProjectHasEightTracksAndDisabledRoutes(t *testing.T) {
	p := NewProject()
	for i, tr := range p.Tracks {
		if tr == nil {
			t.Fatalf("track %d is nil", i)
		}
		if tr.Project != p {
			t.Fatalf("track %d missing back-reference to project", i)
		}
	}
	for i, r := range p.Routes {
		if r.Target != RouteTargetNone {
			t.Fatalf("route %d expected RouteTargetNone, got %v", i, r.Target)
		}
	}
}

func TestProjectSnapshotDeepCopiesAndStripsRuntimeState(t *testing.T) {
	p := NewProject()
	p.Tracks[0].NotePatterns[0].Steps[0].Gate = true

	cp := p.Snapshot()

	if cp == p {
		t.Fatal("expected Snapshot to return a distinct project")
	}
	cp.Tracks[0].NotePatterns[0].Steps[0].Gate = false
	if !p.Tracks[0].NotePatterns[0].Steps[0].Gate {
		t.Fatal("expected Snapshot to deep copy track pattern data")
	}
	for i, tr := range cp.Tracks {
		if tr == nil {
			continue
		}
		if tr.Project != nil {
			t.Fatalf("expected snapshot track %d to strip the Project back-reference", i)
		}
	}
}

func TestProjectTickAllAdvancesMasterTick(t *testing.T) {
	p := NewProject()
	p.TickAll(7)
	if p.MasterTick != 7 {
		t.Fatalf("expected MasterTick=7, got %d", p.MasterTick)
	}
}

func TestProjectTickAllSkipsNilTracks(t *testing.T) {
	p := NewProject()
	p.Tracks[2] = nil
	// Should not panic.
	p.TickAll(1)
	p.UpdateAll(0.01)
}

func TestProjectChangeTrackModeSwitchesEngine(t *testing.T) {
	p := NewProject()
	p.ChangeTrackMode(0, TrackCurve)
	if p.Tracks[0].Mode != TrackCurve {
		t.Fatalf("expected track 0 mode TrackCurve, got %v", p.Tracks[0].Mode)
	}
	if p.Tracks[0].Engine().TrackMode() != TrackCurve {
		t.Fatal("expected engine to report TrackCurve")
	}
}
