package core

import "time"

// Clock reports the current time. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// WallClock is the real-time Clock.
var WallClock Clock = wallClock{}

// ManualClock is a Clock advanced explicitly.
type ManualClock struct {
	T time.Time
}

// Now returns the current manual time.
func (m *ManualClock) Now() time.Time { return m.T }

// Advance moves the clock forward by d.
func (m *ManualClock) Advance(d time.Duration) { m.T = m.T.Add(d) }

// FixedStep helps run frame updates at a steady ticks-per-second rate and
// tracks the animation time that particle phases are computed from.
type FixedStep struct {
	clock       Clock
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	elapsed     time.Duration
}

// NewFixedStep constructs a FixedStep controller targeting the given TPS.
func NewFixedStep(tps int) *FixedStep {
	return NewFixedStepClock(tps, WallClock)
}

// NewFixedStepClock is NewFixedStep with an explicit clock.
func NewFixedStepClock(tps int, clock Clock) *FixedStep {
	if clock == nil {
		clock = WallClock
	}
	fs := &FixedStep{clock: clock}
	fs.SetTPS(tps)
	fs.accumulator = fs.step
	return fs
}

// SetTPS changes the tick rate. It is safe to call from the main loop.
func (f *FixedStep) SetTPS(tps int) {
	if tps <= 0 {
		tps = 60
	}
	f.step = time.Second / time.Duration(tps)
}

// Step returns the duration of one tick.
func (f *FixedStep) Step() time.Duration { return f.step }

// ShouldStep reports whether the simulation should advance by one tick.
// Every call that returns true adds one step to Elapsed.
func (f *FixedStep) ShouldStep() bool {
	now := f.clock.Now()
	if f.last.IsZero() {
		f.last = now
	}
	delta := now.Sub(f.last)
	f.last = now
	f.accumulator += delta
	if f.accumulator >= f.step {
		f.accumulator -= f.step
		f.elapsed += f.step
		return true
	}
	return false
}

// Elapsed returns the animation time accumulated by stepped ticks.
func (f *FixedStep) Elapsed() time.Duration { return f.elapsed }

// Millis returns Elapsed in milliseconds as a float, the unit the particle
// oscillators use.
func Millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
