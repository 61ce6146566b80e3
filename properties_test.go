package synth

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"zikichombo.org/sound/freq"
)

// Property: pulling a node in arbitrarily many chunks yields the same
// concatenated stream as pulling the total count in one call from an
// equivalently constructed fresh node.
func TestPropertyPullExactness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := 1000 * freq.Hertz
		chunks := rapid.SliceOfN(rapid.IntRange(1, 7), 1, 6).Draw(t, "chunks")

		total := 0
		for _, c := range chunks {
			total += c
		}

		chunked := NewPhasor(rate, 220, SineWave)
		var got []complex128
		for _, c := range chunks {
			buf, err := chunked.Produce(c)
			require.NoError(t, err)
			for i := 0; i < buf.Len(); i++ {
				got = append(got, buf.At(i))
			}
		}

		whole := NewPhasor(rate, 220, SineWave)
		buf, err := whole.Produce(total)
		require.NoError(t, err)

		require.Equal(t, buf.Len(), len(got))
		for i := 0; i < buf.Len(); i++ {
			assert.InDelta(t, real(buf.At(i)), real(got[i]), 1e-9)
		}
	})
}

// Property: every Tee branch sees the identical deterministic stream as the
// shared source, in order, regardless of the interleaving of reads across
// branches.
func TestPropertyTeeFanOutEquality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := 1000 * freq.Hertz
		src := newRampSource(rate)
		tee := NewTee(src, 3)
		counts := make([]int, 3)

		order := rapid.SliceOfN(rapid.IntRange(0, 2), 1, 10).Draw(t, "branchOrder")
		for _, b := range order {
			n := rapid.IntRange(1, 5).Draw(t, "readSize")
			buf, err := tee.Branch(b).Produce(n)
			require.NoError(t, err)
			for i := 0; i < buf.Len(); i++ {
				assert.InDelta(t, float64(counts[b]), real(buf.At(i)), 1e-9)
				counts[b]++
			}
		}
	})
}

// Property: adding the same source twice with gains a and b is
// behaviorally equivalent to adding it once with gain a+b.
func TestPropertyMixerGainAdditivity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := 1000 * freq.Hertz
		a := rapid.Float64Range(-5, 5).Draw(t, "a")
		b := rapid.Float64Range(-5, 5).Draw(t, "b")

		srcTwice := NewConstant(rate, complex(2, 0), false)
		twice := NewMixer(rate, 0, true)
		require.NoError(t, twice.Add(srcTwice, complex(a, 0)))
		require.NoError(t, twice.Add(srcTwice, complex(b, 0)))

		srcOnce := NewConstant(rate, complex(2, 0), false)
		once := NewMixer(rate, 0, true)
		require.NoError(t, once.Add(srcOnce, complex(a+b, 0)))

		bufTwice, err := twice.Produce(4)
		require.NoError(t, err)
		bufOnce, err := once.Produce(4)
		require.NoError(t, err)
		for i := 0; i < 4; i++ {
			assert.InDelta(t, real(bufOnce.At(i)), real(bufTwice.At(i)), 1e-6)
		}
	})
}

// Property: stop_early=true ends on the first block where either source
// ends; stop_early=false ends only once both have ended.
func TestPropertyMixerShortReadPolicy(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := 1 * freq.Hertz
		lenA := rapid.IntRange(1, 6).Draw(t, "lenA")
		lenB := rapid.IntRange(1, 6).Draw(t, "lenB")
		stopEarly := rapid.Bool().Draw(t, "stopEarly")

		a := NewConstant(rate, complex(1, 0), false).For(float64(lenA))
		b := NewConstant(rate, complex(1, 0), false).For(float64(lenB))
		m := NewMixer(rate, 0, stopEarly)
		require.NoError(t, m.Add(a, complex(1, 0)))
		require.NoError(t, m.Add(b, complex(1, 0)))

		minLen, maxLen := lenA, lenA
		if lenB < minLen {
			minLen = lenB
		}
		if lenB > maxLen {
			maxLen = lenB
		}

		produced := 0
		for {
			buf, err := m.Produce(1)
			if err != nil {
				require.ErrorIs(t, err, ErrEndOfStream)
				break
			}
			produced += buf.Len()
		}
		if stopEarly {
			assert.Equal(t, minLen, produced)
		} else {
			assert.Equal(t, maxLen, produced)
		}
	})
}

// Property: an integer delay of k samples shifts a ramp right by exactly k
// samples, zero-padded before the shifted stream begins.
func TestPropertyDelayIntegerShiftIsExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := 44100 * freq.Hertz
		k := rapid.IntRange(0, 8).Draw(t, "k")
		pullLen := rapid.IntRange(1, 12).Draw(t, "pullLen")

		src := newRampSource(rate)
		delaySrc := NewConstant(rate, complex(float64(k), 0), false)
		d := NewDelay(src, delaySrc, 16)

		buf, err := d.Produce(pullLen)
		require.NoError(t, err)
		for i := 0; i < buf.Len(); i++ {
			want := float64(i - k)
			if want < 0 {
				want = 0
			}
			assert.InDelta(t, want, real(buf.At(i)), 1e-9)
		}
	})
}

// Property: a Parameter's smoothed output never overshoots its clamped
// range and takes at least the linear-rate-limited number of samples to
// reach a step target.
func TestPropertyParameterSmoothingBound(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rate := 1000 * freq.Hertz
		rateHz := 1000.0
		maxRise := rapid.Float64Range(1, 500).Draw(t, "maxRisePerSecond")

		p := NewParameter(ParamTemplate{Class: ControlChange, Index: 1, HasIndex: true},
			0, 127, 0, 0, 127, rate, 0, maxRise, maxRise)
		p.Tick() // arms the follower at its initial (default) value

		ok := p.HandleEvent(MidiEvent{Class: ControlChange, Index: 1, Value: 127})
		require.True(t, ok)

		perSample := maxRise / rateHz
		minSamples := int(math.Ceil(127.0 / perSample))

		reachedAt := -1
		for i := 0; i < minSamples+20; i++ {
			v := p.Tick()
			assert.LessOrEqual(t, v, 127.0+1e-6)
			assert.GreaterOrEqual(t, v, -1e-6)
			if reachedAt == -1 && v >= 127.0-1e-6 {
				reachedAt = i + 1
			}
		}
		require.NotEqual(t, -1, reachedAt, "must eventually reach target")
		assert.GreaterOrEqual(t, reachedAt, minSamples)
	})
}
