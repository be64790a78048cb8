package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedStepManualClock(t *testing.T) {
	clock := &ManualClock{T: time.Unix(100, 0)}
	fs := NewFixedStepClock(10, clock)

	// The accumulator starts primed with one step.
	assert.True(t, fs.ShouldStep())
	assert.False(t, fs.ShouldStep())

	clock.Advance(50 * time.Millisecond)
	assert.False(t, fs.ShouldStep())
	clock.Advance(50 * time.Millisecond)
	assert.True(t, fs.ShouldStep())

	assert.Equal(t, 200*time.Millisecond, fs.Elapsed())
	assert.Equal(t, 200.0, Millis(fs.Elapsed()))
}

func TestFixedStepDefaultsTPS(t *testing.T) {
	fs := NewFixedStepClock(0, &ManualClock{T: time.Unix(1, 0)})
	assert.Equal(t, time.Second/60, fs.Step())
}

func TestRNGDeterministic(t *testing.T) {
	a, b := NewRNG(7), NewRNG(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRNGBounds(t *testing.T) {
	r := NewRNG(1)
	for i := 0; i < 1000; i++ {
		v := r.Range(0.8, 1.2)
		assert.GreaterOrEqual(t, v, 0.8)
		assert.Less(t, v, 1.2)

		j := r.Jitter(0.4)
		assert.GreaterOrEqual(t, j, -0.4)
		assert.Less(t, j, 0.4)

		n := r.IntN(5)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 5)
	}
	assert.Equal(t, 0, r.IntN(0))
}

func TestVec3(t *testing.T) {
	a, b := V(1, 2, 3), V(-2, 0.5, 4)
	assert.Equal(t, V(-1, 2.5, 7), a.Add(b))
	assert.Equal(t, V(3, 1.5, -1), a.Sub(b))
	assert.Equal(t, V(2, 4, 6), a.Scale(2))
	assert.Equal(t, 11.0, a.Dot(b))
	assert.Equal(t, V(0, 0, 1), V(1, 0, 0).Cross(V(0, 1, 0)))
	assert.Equal(t, 5.0, V(3, 0, 4).Len())
	assert.InDelta(t, 1.0, V(3, -2, 7).Normalize().Len(), 1e-12)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}
