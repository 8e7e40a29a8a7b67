// Package input turns renderer input events into per-tick snapshots.
package input

import (
	"strings"
	"sync"

	"voxelsandbox.dev/internal/sim/world/physics"
)

// Key codes follow KeyboardEvent.code.
const (
	KeyForward = "KeyW"
	KeyBack    = "KeyS"
	KeyLeft    = "KeyA"
	KeyRight   = "KeyD"
	KeyJump    = "Space"
)

// Mouse buttons follow MouseEvent.button.
const (
	ButtonMine  = 0
	ButtonPlace = 2
)

// Slots is the number of hotbar slots (Digit1..Digit5).
const Slots = 5

// Snapshot is the input state for one tick. Mouse deltas and clicks cover the
// interval since the previous snapshot.
type Snapshot struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
	Jump    bool

	MouseDX float64
	MouseDY float64
	Mine    bool
	Place   bool

	PointerLocked bool
	Slot          int // 0-based hotbar slot
}

// Intent converts held movement keys to a movement request.
func (s Snapshot) Intent() physics.Intent {
	var in physics.Intent
	if s.Forward {
		in.Forward++
	}
	if s.Back {
		in.Forward--
	}
	if s.Right {
		in.Strafe++
	}
	if s.Left {
		in.Strafe--
	}
	in.Jump = s.Jump
	return in
}

type Source interface {
	PollState() Snapshot
}

// Latch accumulates events from any goroutine until the simulation polls.
type Latch struct {
	mu   sync.Mutex
	held map[string]bool
	cur  Snapshot
}

func NewLatch() *Latch {
	return &Latch{held: map[string]bool{}}
}

func (l *Latch) KeyDown(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n, ok := digitSlot(code); ok {
		l.cur.Slot = n
		return
	}
	l.held[code] = true
}

func (l *Latch) KeyUp(code string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, code)
}

func (l *Latch) MouseMove(dx, dy float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cur.MouseDX += dx
	l.cur.MouseDY += dy
}

func (l *Latch) ButtonDown(button int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch button {
	case ButtonMine:
		l.cur.Mine = true
	case ButtonPlace:
		l.cur.Place = true
	}
}

// SetPointerLock records pointer lock changes. Losing the lock releases all keys.
func (l *Latch) SetPointerLock(locked bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cur.PointerLocked = locked
	if !locked {
		l.held = map[string]bool{}
	}
}

func (l *Latch) SelectSlot(n int) {
	if n < 0 || n >= Slots {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cur.Slot = n
}

// Release drops held keys and accumulated deltas, e.g. when the renderer disconnects.
func (l *Latch) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held = map[string]bool{}
	l.cur = Snapshot{Slot: l.cur.Slot}
}

func (l *Latch) PollState() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.cur
	s.Forward = l.held[KeyForward]
	s.Back = l.held[KeyBack]
	s.Left = l.held[KeyLeft]
	s.Right = l.held[KeyRight]
	s.Jump = l.held[KeyJump]

	l.cur.MouseDX, l.cur.MouseDY = 0, 0
	l.cur.Mine, l.cur.Place = false, false
	return s
}

func digitSlot(code string) (int, bool) {
	d, ok := strings.CutPrefix(code, "Digit")
	if !ok || len(d) != 1 || d[0] < '1' || d[0] >= '1'+Slots {
		return 0, false
	}
	return int(d[0] - '1'), true
}

// Script replays fixed snapshots, one per poll, then idles with the last
// pointer lock and slot.
type Script struct {
	frames []Snapshot
	i      int
}

func NewScript(frames ...Snapshot) *Script {
	return &Script{frames: frames}
}

func (s *Script) PollState() Snapshot {
	if s.i < len(s.frames) {
		s.i++
		return s.frames[s.i-1]
	}
	if len(s.frames) == 0 {
		return Snapshot{}
	}
	last := s.frames[len(s.frames)-1]
	return Snapshot{PointerLocked: last.PointerLocked, Slot: last.Slot}
}
