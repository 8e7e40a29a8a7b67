package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"voxelsandbox.dev/internal/protocol"
)

// bot is a headless renderer: it mirrors the proxy set like a browser would
// and drives the player with a fixed walk-and-dig routine.
func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "client name")
		interval = flag.Duration("input_every", 100*time.Millisecond, "input send interval")
		report   = flag.Uint64("report_every", 300, "log mirror stats every N frames")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	frames := make(chan protocol.FrameMsg, 64)
	go readLoop(conn, logger, frames)

	m := newMirror()
	var r routine
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := m.apply(f); err != nil {
				logger.Printf("mirror: %v", err)
			}
			if *report > 0 && m.frames%*report == 0 {
				logger.Printf("tick=%d proxies=%d resyncs=%d pos=%.2f,%.2f,%.2f target=%v",
					f.Tick, m.len(), m.resyncs, f.Camera.Pos[0], f.Camera.Pos[1], f.Camera.Pos[2], f.Target)
			}
		case <-ticker.C:
			events := r.next(m.target)
			if len(events) == 0 {
				continue
			}
			msg := protocol.InputMsg{Type: protocol.TypeInput, ProtocolVersion: protocol.Version, Events: events}
			if err := conn.WriteJSON(msg); err != nil {
				logger.Printf("send INPUT: %v", err)
				return
			}
		}
	}
}

func readLoop(conn *websocket.Conn, logger *log.Logger, out chan<- protocol.FrameMsg) {
	defer close(out)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME session=%s tick_rate=%d seed=%d palette=%d blocks",
				w.SessionID, w.WorldParams.TickRateHz, w.WorldParams.Seed, len(w.BlockPalette))

		case protocol.TypeFrame:
			var f protocol.FrameMsg
			if err := json.Unmarshal(msg, &f); err != nil {
				continue
			}
			out <- f

		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err == nil {
				logger.Printf("ERROR %s: %s", e.Code, e.Message)
			}
		}
	}
}
