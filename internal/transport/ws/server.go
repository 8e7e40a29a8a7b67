package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voxelsandbox.dev/internal/protocol"
	"voxelsandbox.dev/internal/sim/catalogs"
	"voxelsandbox.dev/internal/sim/input"
	"voxelsandbox.dev/internal/sim/world"
)

// SessionHook is told when a renderer session starts and ends (may be nil).
type SessionHook interface {
	SessionStarted(id, clientName string)
	SessionEnded(id string, frames, resyncs uint64)
}

type Server struct {
	world *world.World
	latch *input.Latch
	log   *log.Logger
	hook  SessionHook

	// OutQueue is the number of frames buffered per session before it is
	// considered behind and resynced.
	OutQueue int

	upgrader websocket.Upgrader

	mu     sync.Mutex
	active *session
}

func NewServer(w *world.World, latch *input.Latch, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		world:    w,
		latch:    latch,
		log:      logger,
		OutQueue: 16,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) SetSessionHook(h SessionHook) { s.hook = h }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sess := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.release(sess)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		if err := s.world.Attach(ctx, sess); err != nil {
			s.log.Printf("session %s: attach: %v", sess.id, err)
			return
		}
		defer func() {
			detachCtx, cancelDetach := context.WithTimeout(context.Background(), time.Second)
			defer cancelDetach()
			_ = s.world.Detach(detachCtx, sess)
		}()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b := <-sess.out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeInput {
				sess.sendError(protocol.ErrProtoBadRequest, "expected INPUT")
				continue
			}
			in, err := protocol.DecodeInput(msg)
			if err != nil {
				sess.sendError(protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			applyInput(s.latch, in.Events)
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) *session {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		reject(conn, protocol.ErrProtoBadRequest, "expected HELLO")
		return nil
	}
	if base.ProtocolVersion != protocol.Version {
		reject(conn, protocol.ErrProtoVersion, "protocol_version must be "+protocol.Version)
		return nil
	}
	hello, err := protocol.DecodeHello(msg)
	if err != nil {
		reject(conn, protocol.ErrProtoBadRequest, err.Error())
		return nil
	}

	sess := newSession(uuid.NewString(), s.OutQueue)
	s.mu.Lock()
	busy := s.active != nil
	if !busy {
		s.active = sess
	}
	s.mu.Unlock()
	if busy {
		reject(conn, protocol.ErrWorldBusy, "a renderer is already attached")
		return nil
	}

	if err := writeJSON(conn, s.welcome(sess.id)); err != nil {
		s.release(sess)
		return nil
	}
	s.log.Printf("session %s: attached client=%q", sess.id, hello.ClientName)
	if s.hook != nil {
		s.hook.SessionStarted(sess.id, hello.ClientName)
	}
	return sess
}

func (s *Server) release(sess *session) {
	s.mu.Lock()
	if s.active == sess {
		s.active = nil
	}
	s.mu.Unlock()
	frames, resyncs := sess.counts()
	if s.hook != nil {
		s.hook.SessionEnded(sess.id, frames, resyncs)
	}
	s.log.Printf("session %s: detached frames=%d resyncs=%d", sess.id, frames, resyncs)
}

func (s *Server) welcome(sessionID string) protocol.WelcomeMsg {
	cfg := s.world.Config()
	cat := s.world.Catalog()
	hotbar := make([]int, len(catalogs.Placeable))
	for i, b := range catalogs.Placeable {
		hotbar[i] = int(b)
	}
	palette := make([]protocol.PaletteEntry, 0, len(cat.Defs))
	for _, d := range cat.Defs {
		if d.ID == catalogs.Air {
			continue
		}
		palette = append(palette, protocol.PaletteEntry{
			ID:      int(d.ID),
			Key:     d.Key,
			Name:    d.Name,
			Texture: d.Texture,
			Solid:   d.Solid,
		})
	}
	return protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sessionID,
		WorldParams: protocol.WorldParams{
			Seed:       cfg.Seed,
			TickRateHz: cfg.TickRateHz,
			Height:     cfg.WorldHeight,
			HalfWidth:  cfg.Gen.HalfWidth,
			ViewRadius: cfg.Visibility.Radius,
			Reach:      cfg.Reach,
			Hotbar:     hotbar,
			EyeOffset:  cfg.Body.EyeOffset,
		},
		BlockPalette:  palette,
		PaletteDigest: cat.PaletteDigest,
	}
}

func applyInput(l *input.Latch, events []protocol.InputEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case protocol.EventKeyDown:
			l.KeyDown(ev.Code)
		case protocol.EventKeyUp:
			l.KeyUp(ev.Code)
		case protocol.EventMouseMove:
			l.MouseMove(ev.DX, ev.DY)
		case protocol.EventMouseDown:
			l.ButtonDown(ev.Button)
		case protocol.EventPointerLock:
			l.SetPointerLock(ev.Locked)
		case protocol.EventSelectSlot:
			l.SelectSlot(ev.Slot)
		}
	}
}

func reject(conn *websocket.Conn, code, message string) {
	_ = writeJSON(conn, protocol.NewError(code, message))
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code), time.Now().Add(time.Second))
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
