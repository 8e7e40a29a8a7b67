package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voxelsandbox.dev/internal/protocol"
)

func TestMirror_AddBeforeRemoveWithinFrame(t *testing.T) {
	m := newMirror()
	require.NoError(t, m.apply(protocol.FrameMsg{Tick: 1, Add: []protocol.ProxyAdd{{H: 1, Pos: [3]int{0, 7, 0}, Block: 2}}}))
	// Same cell swapped to a new handle in one frame; a handle made and
	// dropped in the same frame is also legal.
	require.NoError(t, m.apply(protocol.FrameMsg{
		Tick:   2,
		Add:    []protocol.ProxyAdd{{H: 2, Pos: [3]int{0, 7, 0}, Block: 3}, {H: 3, Pos: [3]int{1, 7, 0}, Block: 3}},
		Remove: []uint64{1, 3},
	}))
	assert.Equal(t, 1, m.len())
	assert.Equal(t, uint64(2), m.cells[[3]int{0, 7, 0}])
}

func TestMirror_ResyncDropsEverything(t *testing.T) {
	m := newMirror()
	require.NoError(t, m.apply(protocol.FrameMsg{Tick: 1, Add: []protocol.ProxyAdd{{H: 1}, {H: 2, Pos: [3]int{1, 0, 0}}}}))
	require.NoError(t, m.apply(protocol.FrameMsg{Tick: 2, Resync: true, Add: []protocol.ProxyAdd{{H: 9, Pos: [3]int{5, 5, 5}}}}))
	assert.Equal(t, 1, m.len())
	assert.Equal(t, uint64(1), m.resyncs)
	assert.Equal(t, uint64(2), m.frames)
}

func TestMirror_RejectsInconsistentFrames(t *testing.T) {
	m := newMirror()
	require.Error(t, m.apply(protocol.FrameMsg{Tick: 1, Remove: []uint64{4}}))

	m = newMirror()
	require.NoError(t, m.apply(protocol.FrameMsg{Tick: 1, Add: []protocol.ProxyAdd{{H: 1}}}))
	require.Error(t, m.apply(protocol.FrameMsg{Tick: 2, Add: []protocol.ProxyAdd{{H: 1}}}))

	m = newMirror()
	require.Error(t, m.apply(protocol.FrameMsg{Tick: 1, Add: []protocol.ProxyAdd{{H: 1}, {H: 2}}}))
}

func TestRoutine_Cycle(t *testing.T) {
	var r routine
	first := r.next(nil)
	require.Len(t, first, 2)
	assert.Equal(t, protocol.EventPointerLock, first[0].Kind)
	assert.True(t, first[0].Locked)

	walk := r.next(nil)
	require.Len(t, walk, 1)
	assert.Equal(t, protocol.EventKeyDown, walk[0].Kind)
	assert.Equal(t, "KeyW", walk[0].Code)

	for i := 1; i < walkSteps; i++ {
		assert.Empty(t, r.next(nil))
	}
	look := r.next(nil)
	require.Len(t, look, 2)
	assert.Equal(t, protocol.EventKeyUp, look[0].Kind)

	target := &[3]int{0, 7, 0}
	assert.Empty(t, r.next(nil), "no click without a target")
	dig := r.next(target)
	require.Len(t, dig, 1)
	assert.Equal(t, protocol.EventMouseDown, dig[0].Kind)
	assert.Equal(t, 0, dig[0].Button)

	for i := walkSteps + 3; i < walkSteps+digSteps-1; i++ {
		r.next(target)
	}
	up := r.next(target)
	require.Len(t, up, 1)
	assert.Equal(t, -400.0, up[0].DY)

	again := r.next(nil)
	require.Len(t, again, 1)
	assert.Equal(t, protocol.EventKeyDown, again[0].Kind)
}
