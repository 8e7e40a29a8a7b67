package ws

import (
	"encoding/json"
	"sync/atomic"

	"voxelsandbox.dev/internal/protocol"
	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/world"
	"voxelsandbox.dev/internal/sim/world/visibility"
)

// session is the world.Renderer of one websocket connection. Proxy commands
// are buffered during a tick and flushed as one FRAME.
type session struct {
	id  string
	out chan []byte

	// Owned by the simulation goroutine.
	next   uint64
	add    []protocol.ProxyAdd
	remove []uint64

	frames  atomic.Uint64
	resyncs atomic.Uint64
}

func newSession(id string, queue int) *session {
	if queue <= 0 {
		queue = 16
	}
	return &session{id: id, out: make(chan []byte, queue)}
}

func (s *session) CreateCubeProxy(p world.Vec3i, b catalogs.BlockID) visibility.Handle {
	s.next++
	s.add = append(s.add, protocol.ProxyAdd{H: s.next, Pos: p.ToArray(), Block: int(b)})
	return visibility.Handle(s.next)
}

func (s *session) DestroyProxy(h visibility.Handle) {
	s.remove = append(s.remove, uint64(h))
}

// Frame never blocks the simulation: when the writer is behind the frame is
// dropped and false asks the world for a full resync.
func (s *session) Frame(f world.Frame) bool {
	msg := protocol.FrameMsg{
		Type:            protocol.TypeFrame,
		ProtocolVersion: protocol.Version,
		Tick:            f.Tick,
		Camera: protocol.CameraMsg{
			Pos:   [3]float64(f.Camera.Pos),
			Yaw:   f.Camera.Yaw,
			Pitch: f.Camera.Pitch,
		},
		Selected: int(f.Selected),
		Add:      s.add,
		Remove:   s.remove,
		Resync:   f.Resync,
	}
	if f.Target != nil {
		t := f.Target.ToArray()
		msg.Target = &t
	}
	s.add, s.remove = nil, nil

	b, err := json.Marshal(msg)
	if err != nil {
		return false
	}
	select {
	case s.out <- b:
		s.frames.Add(1)
		if f.Resync {
			s.resyncs.Add(1)
		}
		return true
	default:
		return false
	}
}

func (s *session) sendError(code, message string) {
	b, err := json.Marshal(protocol.NewError(code, message))
	if err != nil {
		return
	}
	select {
	case s.out <- b:
	default:
	}
}

func (s *session) counts() (frames, resyncs uint64) {
	return s.frames.Load(), s.resyncs.Load()
}
