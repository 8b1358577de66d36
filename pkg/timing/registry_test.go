package timing

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable millisecond clock for deterministic tests.
type fakeClock struct {
	now int64
}

func (c *fakeClock) read() int64 {
	return c.now
}

// warnRecorder captures diagnostics instead of logging them.
type warnRecorder struct {
	messages []string
}

func (w *warnRecorder) Warnf(format string, args ...interface{}) {
	w.messages = append(w.messages, fmt.Sprintf(format, args...))
}

func newTestRegistry() (*Registry, *fakeClock, *warnRecorder) {
	clock := &fakeClock{}
	warn := &warnRecorder{}
	return New(clock.read, warn), clock, warn
}

func TestStartStopRecordsElapsed(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 100
	reg.Start("open-file")
	require.True(t, reg.IsActive("open-file"))

	clock.now = 340
	reg.Stop("open-file")
	require.False(t, reg.IsActive("open-file"))

	m := reg.Measurements()["open-file"]
	require.NotNil(t, m)
	assert.False(t, m.IsSeries())
	assert.Equal(t, int64(240), m.Value())
}

func TestStopWithoutStartRecordsClockReading(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	// Never started: the elapsed-since-process-start reading is recorded.
	clock.now = 1234
	reg.Stop("cold")

	m := reg.Measurements()["cold"]
	require.NotNil(t, m)
	assert.Equal(t, int64(1234), m.Value())
	assert.False(t, m.IsSeries())

	clock.now = 2000
	reg.Stop("cold")
	assert.True(t, m.IsSeries())
	assert.Equal(t, []int64{1234, 2000}, m.Values())
}

func TestDuplicateStartIsRejected(t *testing.T) {
	reg, clock, warn := newTestRegistry()

	clock.now = 100
	reg.Start("job")

	clock.now = 250
	reg.Start("job") // must not reset the original start time

	require.Len(t, warn.messages, 1)
	assert.Contains(t, warn.messages[0], "job")

	clock.now = 400
	reg.Stop("job")

	// Elapsed from the first start, not the second.
	assert.Equal(t, int64(300), reg.Measurements()["job"].Value())
}

func TestStartManySharesOrigin(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 50
	reg.Start("parse", "validate")
	require.True(t, reg.IsActive("parse"))
	require.True(t, reg.IsActive("validate"))

	clock.now = 120
	reg.Stop("parse")
	reg.Stop("validate")

	a := reg.Measurements()["parse"].Value()
	b := reg.Measurements()["validate"].Value()
	assert.Equal(t, a, b, "timers started together must share one captured origin")
	assert.Equal(t, int64(70), a)
}

func TestUpdateOverwritesUntilFinalized(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 10
	reg.Start("render")

	clock.now = 25
	reg.Update("render") // first update: records 15, becomes updatable
	require.False(t, reg.IsActive("render"))

	m := reg.Measurements()["render"]
	require.NotNil(t, m)
	assert.Equal(t, int64(15), m.Value())
	assert.False(t, m.IsSeries())

	clock.now = 40
	reg.Update("render") // overwrite, still a scalar
	assert.Equal(t, int64(30), m.Value())
	assert.False(t, m.IsSeries(), "overwrite must not grow the record")

	reg.Finalize("render")

	clock.now = 50
	reg.Start("render")
	clock.now = 65
	reg.Stop("render")

	// Fresh run after finalize promotes to a two-element series.
	assert.Equal(t, []int64{30, 15}, m.Values())
}

func TestBareUpdateActsLikeStop(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 500
	reg.Update("ghost")

	m := reg.Measurements()["ghost"]
	require.NotNil(t, m)
	assert.Equal(t, int64(500), m.Value())

	// Never became updatable, so a second bare update appends rather
	// than overwrites.
	clock.now = 600
	reg.Update("ghost")
	assert.Equal(t, []int64{500, 600}, m.Values())
}

func TestStartWhileUpdatableBeginsFreshRun(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 0
	reg.Start("load")
	clock.now = 10
	reg.Update("load")

	// Start without an intervening Finalize closes the previous run.
	clock.now = 20
	reg.Start("load")
	require.True(t, reg.IsActive("load"))
	_, stillUpdatable := reg.updatable["load"]
	require.False(t, stillUpdatable)

	clock.now = 50
	reg.Stop("load")
	assert.Equal(t, []int64{10, 30}, reg.Measurements()["load"].Values())
}

func TestFinalizeAbsentNameIsNoop(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 5
	reg.Start("keep")
	reg.Finalize("missing")

	require.True(t, reg.IsActive("keep"))
	require.Empty(t, reg.Measurements())
}

func TestFinalizeKeepsMeasurements(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 0
	reg.Start("op")
	clock.now = 7
	reg.Update("op")
	reg.Finalize("op")

	assert.Equal(t, int64(7), reg.Measurements()["op"].Value())
	assert.False(t, reg.IsActive("op"))
}

func TestRandomizedSequencesHoldInvariant(t *testing.T) {
	names := []string{"a", "b", "c"}
	rng := rand.New(rand.NewSource(7))

	reg, clock, _ := newTestRegistry()
	// Swallow duplicate-start warnings; they are expected here.
	reg.warn = &warnRecorder{}

	for i := 0; i < 5000; i++ {
		clock.now += int64(rng.Intn(20))
		name := names[rng.Intn(len(names))]

		switch rng.Intn(5) {
		case 0:
			reg.Start(name)
		case 1:
			reg.Stop(name)
		case 2:
			reg.Update(name)
		case 3:
			reg.Finalize(name)
		case 4:
			reg.Start(names...)
		}

		for _, n := range names {
			_, active := reg.active[n]
			_, updatable := reg.updatable[n]
			if active && updatable {
				t.Fatalf("Step %d: %q is in both the active and updatable sets", i, n)
			}
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	reg, clock, _ := newTestRegistry()

	clock.now = 3
	reg.Stop("x")

	snap := reg.Snapshot()
	snap["x"][0] = 999

	assert.Equal(t, int64(3), reg.Measurements()["x"].Value())
}

func TestNewDefaults(t *testing.T) {
	reg := New(nil, nil)
	require.NotNil(t, reg)

	// The default clock is monotonic and non-negative.
	v := reg.clock()
	assert.GreaterOrEqual(t, v, int64(0))
	assert.GreaterOrEqual(t, reg.clock(), v)
}
