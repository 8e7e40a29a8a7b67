package main

import "voxelsandbox.dev/internal/protocol"

// routine walks forward for a while, then looks down and digs, then looks
// back up and repeats.
type routine struct {
	step int
}

const (
	walkSteps = 30
	digSteps  = 10
)

func (r *routine) next(target *[3]int) []protocol.InputEvent {
	defer func() { r.step++ }()
	if r.step == 0 {
		return []protocol.InputEvent{
			{Kind: protocol.EventPointerLock, Locked: true},
			{Kind: protocol.EventSelectSlot, Slot: 2},
		}
	}
	phase := (r.step - 1) % (walkSteps + digSteps)
	switch {
	case phase == 0:
		return []protocol.InputEvent{{Kind: protocol.EventKeyDown, Code: "KeyW"}}
	case phase == walkSteps:
		return []protocol.InputEvent{
			{Kind: protocol.EventKeyUp, Code: "KeyW"},
			{Kind: protocol.EventMouseMove, DY: 400},
		}
	case phase > walkSteps && phase < walkSteps+digSteps-1:
		if target == nil {
			return nil
		}
		return []protocol.InputEvent{{Kind: protocol.EventMouseDown, Button: 0}}
	case phase == walkSteps+digSteps-1:
		return []protocol.InputEvent{{Kind: protocol.EventMouseMove, DY: -400}}
	}
	return nil
}
