package synth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"zikichombo.org/sound/freq"
)

type loopNode struct {
	base
	other Node
}

func (n *loopNode) Sources() map[string]any { return map[string]any{"x": n.other} }
func (n *loopNode) Produce(k int) (*Buffer, error) { return nil, ErrEndOfStream }

func TestBuildGraphOrdersSourcesBeforeDependents(t *testing.T) {
	rate := 44100 * freq.Hertz
	srcA := NewConstant(rate, complex(1, 0), false)
	srcB := NewConstant(rate, complex(2, 0), false)
	m := NewMixer(rate, 0, true)
	require.NoError(t, m.Add(srcA, complex(1, 0)))
	require.NoError(t, m.Add(srcB, complex(1, 0)))

	g := BuildGraph(m)
	require.NoError(t, g.CheckAcyclic())

	order := g.Order()
	posA, posB, posM := -1, -1, -1
	for i, n := range order {
		switch n {
		case srcA:
			posA = i
		case srcB:
			posB = i
		case Node(m):
			posM = i
		}
	}
	require.GreaterOrEqual(t, posA, 0)
	require.GreaterOrEqual(t, posB, 0)
	require.GreaterOrEqual(t, posM, 0)
	assert.Less(t, posA, posM)
	assert.Less(t, posB, posM)
}

func TestBuildGraphDetectsCycle(t *testing.T) {
	rate := 44100 * freq.Hertz
	a := &loopNode{base: newBase(rate)}
	b := &loopNode{base: newBase(rate)}
	a.other = b
	b.other = a

	g := BuildGraph(a)
	err := g.CheckAcyclic()
	assert.Error(t, err)
	assert.Len(t, g.Cycles(), 1)
}

func TestGraphFindByRoleFiltersNodes(t *testing.T) {
	rate := 44100 * freq.Hertz
	osc := NewPhasor(rate, 220, SineWave)
	env := NewADEnvelope(rate, 0.01, 0.01, 0.5, 0.6, RoleAmplitude)
	mu := NewMultiplier(rate, complex(1, 0), true)
	require.NoError(t, mu.Add(osc))
	require.NoError(t, mu.Add(env))

	g := BuildGraph(mu)
	oscillators := g.FindByRole(func(n Node) bool {
		_, ok := n.(*Phasor)
		return ok
	})
	require.Len(t, oscillators, 1)
	assert.Same(t, osc, oscillators[0])
}

func TestGraphDescribeListsEveryNode(t *testing.T) {
	rate := 44100 * freq.Hertz
	srcA := NewConstant(rate, complex(1, 0), false)
	m := NewMixer(rate, 0, true)
	require.NoError(t, m.Add(srcA, complex(1, 0)))

	g := BuildGraph(m)
	desc := g.Describe()
	assert.Contains(t, desc, "Constant")
	assert.Contains(t, desc, "Mixer")
	assert.True(t, strings.Count(desc, "\n") > 0)
}
