package sequencer

import clone "github.com/huandu/go-clone/generic"

// ConfigTrackCount is the number of tracks a Project owns.
const ConfigTrackCount = 8

// ConfigRouteCount is the number of routing-bus slots a Project owns.
const ConfigRouteCount = 16

// Project owns eight tracks, a routing table, global scale selection and
// playback state (§3.2).
type Project struct {
	Scale    int8
	RootNote int8

	Tracks [ConfigTrackCount]*Track
	Routes [ConfigRouteCount]Route

	Playing      bool
	TempoBpm     float32
	MasterTick   Tick
}

// NewProject returns a project with eight default Note tracks, all
// routes disabled, and playback stopped.
func NewProject() *Project {
	p := &Project{TempoBpm: 120}
	for i := range p.Tracks {
		t := NewTrack()
		t.Project = p
		p.Tracks[i] = t
	}
	for i := range p.Routes {
		p.Routes[i] = Route{Target: RouteTargetNone}
	}
	return p
}

func (p *Project) trackAt(i int) *Track {
	if i < 0 || i >= len(p.Tracks) {
		return nil
	}
	return p.Tracks[i]
}

// Snapshot returns a deep copy of the project suitable for handing off to
// a background file-save task, per §5 "snapshots are taken on the tick
// thread between ticks and handed off to the file task". Using go-clone
// keeps the tick/frame thread from blocking on I/O while avoiding a
// hand-written deep-copy for every nested sequence/pattern slot.
func (p *Project) Snapshot() *Project {
	cp := clone.Clone(p)
	// Engines and the Project back-reference are runtime-only state, not
	// part of the persisted record; the file task never touches them.
	for _, t := range cp.Tracks {
		if t != nil {
			t.engine = nil
			t.Project = nil
		}
	}
	return cp
}

// ChangeTrackMode switches track i to mode through Track.ChangeMode,
// which replaces the track's engine with a freshly constructed one
// (§3.2). The track's pattern data is left as it is and no copy of it
// is taken; an out-of-range i is ignored.
func (p *Project) ChangeTrackMode(i int, mode TrackMode) {
	t := p.trackAt(i)
	if t == nil {
		return
	}
	t.ChangeMode(mode)
}

// TickAll advances every track engine in track-index order (§4.1
// "Ordering: within a tick, engines are invoked in track-index order").
func (p *Project) TickAll(tick Tick) {
	for _, t := range p.Tracks {
		if t == nil {
			continue
		}
		t.Engine().Tick(tick)
	}
	p.MasterTick = tick
}

// UpdateAll drives the dt-based evolution (slew, envelopes) of every
// track engine, once per frame.
func (p *Project) UpdateAll(dt float32) {
	for _, t := range p.Tracks {
		if t == nil {
			continue
		}
		t.Engine().Update(dt)
	}
}
