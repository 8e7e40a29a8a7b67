package main

import (
	"fmt"

	"voxelsandbox.dev/internal/protocol"
)

// mirror holds the proxies a renderer would have on screen.
type mirror struct {
	proxies map[uint64]protocol.ProxyAdd
	cells   map[[3]int]uint64
	target  *[3]int
	frames  uint64
	resyncs uint64
}

func newMirror() *mirror {
	return &mirror{
		proxies: map[uint64]protocol.ProxyAdd{},
		cells:   map[[3]int]uint64{},
	}
}

func (m *mirror) len() int { return len(m.proxies) }

// apply adds before it removes; a resync frame starts from an empty set.
func (m *mirror) apply(f protocol.FrameMsg) error {
	m.frames++
	m.target = f.Target
	if f.Resync {
		m.resyncs++
		clear(m.proxies)
		clear(m.cells)
	}
	for _, a := range f.Add {
		if _, ok := m.proxies[a.H]; ok {
			return fmt.Errorf("tick %d: handle %d added twice", f.Tick, a.H)
		}
		m.proxies[a.H] = a
	}
	for _, h := range f.Remove {
		a, ok := m.proxies[h]
		if !ok {
			return fmt.Errorf("tick %d: remove of unknown handle %d", f.Tick, h)
		}
		delete(m.proxies, h)
		if m.cells[a.Pos] == h {
			delete(m.cells, a.Pos)
		}
	}
	for h, a := range m.proxies {
		if prev, ok := m.cells[a.Pos]; ok && prev != h {
			if _, live := m.proxies[prev]; live {
				return fmt.Errorf("tick %d: cell %v has two proxies", f.Tick, a.Pos)
			}
		}
		m.cells[a.Pos] = h
	}
	return nil
}
