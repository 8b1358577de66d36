// Package timing provides named in-process timers. Operations are timed
// by starting a named timer and stopping it later; completed runs are
// kept per name for reporting. The package does no aggregation and no
// persistence: callers get the raw recorded values.
package timing

import "github.com/opclock/opclock/pkg/logging"

// WarnSink receives the single diagnostic this package emits (attempting
// to start a timer that is already running). *logging.Logger satisfies it.
type WarnSink interface {
	Warnf(format string, args ...interface{})
}

// Registry owns the timer state: completed measurements, currently
// running timers, and timers stopped through Update that may still be
// overwritten. A registry is not safe for concurrent use; callers that
// share one across goroutines must serialize access themselves.
type Registry struct {
	clock Clock
	warn  WarnSink

	measurements map[string]*Measurement
	active       map[string]int64 // name -> start ms
	updatable    map[string]int64 // name -> original start ms
}

// New creates a registry. A nil clock defaults to DefaultClock and a nil
// warn sink defaults to the package logger, so New(nil, nil) is valid.
func New(clock Clock, warn WarnSink) *Registry {
	if clock == nil {
		clock = DefaultClock
	}
	if warn == nil {
		warn = logging.Default()
	}
	return &Registry{
		clock:        clock,
		warn:         warn,
		measurements: make(map[string]*Measurement),
		active:       make(map[string]int64),
		updatable:    make(map[string]int64),
	}
}

// Start begins timing the given names. The clock is read once, so all
// names share an identical start time (useful for overlapping
// measurements that should share an origin). Starting a name that is
// already running is rejected with a warning and changes nothing for
// that name. Starting a name that is still updatable closes out the
// previous run: the updatable entry is dropped and a fresh run begins.
func (r *Registry) Start(names ...string) {
	now := r.clock()
	for _, name := range names {
		if _, ok := r.active[name]; ok {
			r.warn.Warnf("timer %q is already running, ignoring duplicate start", name)
			continue
		}
		delete(r.updatable, name)
		r.active[name] = now
	}
}

// Stop ends timing for name and records the elapsed duration. If name
// was never started, the clock reading itself (elapsed since process
// start) is recorded instead.
func (r *Registry) Stop(name string) {
	now := r.clock()
	if start, ok := r.active[name]; ok {
		delete(r.active, name)
		r.record(name, now-start)
		return
	}
	r.record(name, now)
}

// Update is a repeatable stop for "last event wins" measurements: the
// recorded duration keeps being overwritten on every call until Finalize
// declares the run complete.
//
// The first Update on a running timer records like Stop and moves the
// name into the updatable set. Later Updates recompute the elapsed time
// from the original start and overwrite the current run's value. An
// Update on a name that was never started behaves exactly like Stop and
// does not become updatable: without a captured start time there is
// nothing to recompute from, so repeated bare Updates each record a
// fresh value.
func (r *Registry) Update(name string) {
	now := r.clock()
	if start, ok := r.updatable[name]; ok {
		if m, ok := r.measurements[name]; ok {
			m.OverwriteLast(now - start)
			return
		}
	}
	if start, ok := r.active[name]; ok {
		delete(r.active, name)
		r.updatable[name] = start
		r.record(name, now-start)
		return
	}
	r.record(name, now)
}

// Finalize removes name from the running and updatable sets without
// touching recorded measurements. No-op if the name is in neither. After
// Finalize the next Start/Stop/Update for the name begins a fresh run.
func (r *Registry) Finalize(name string) {
	delete(r.active, name)
	delete(r.updatable, name)
}

// IsActive reports whether name is currently being timed. Names that
// have been stopped through Update but not finalized are not active.
func (r *Registry) IsActive(name string) bool {
	_, ok := r.active[name]
	return ok
}

// Measurements exposes the recorded measurements for reporting. The
// registry remains the sole writer; callers must treat the map and its
// values as read-only.
func (r *Registry) Measurements() map[string]*Measurement {
	return r.measurements
}

// Snapshot returns a deep copy of all recorded runs, safe to hand to
// reporters or other goroutines.
func (r *Registry) Snapshot() map[string][]int64 {
	out := make(map[string][]int64, len(r.measurements))
	for name, m := range r.measurements {
		out[name] = m.Values()
	}
	return out
}

func (r *Registry) record(name string, v int64) {
	m, ok := r.measurements[name]
	if !ok {
		m = &Measurement{}
		r.measurements[name] = m
	}
	m.Record(v)
}
