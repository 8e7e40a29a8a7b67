package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodeHello(t *testing.T) {
	m, err := DecodeHello([]byte(`{"type":"HELLO","protocol_version":"1.0","client_name":"browser"}`))
	if err != nil {
		t.Fatalf("decode hello: %v", err)
	}
	if m.ClientName != "browser" {
		t.Fatalf("client_name=%q want browser", m.ClientName)
	}

	bad := map[string]string{
		"protocol_version required": `{"type":"HELLO"}`,
		"unknown fields rejected":   `{"type":"HELLO","protocol_version":"1.0","agent_name":"x"}`,
		"wrong type":                `{"type":"INPUT","protocol_version":"1.0"}`,
		"truncated":                 `{"type":`,
	}
	for name, raw := range bad {
		if _, err := DecodeHello([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestDecodeInput(t *testing.T) {
	m, err := DecodeInput([]byte(`{
	  "type":"INPUT","protocol_version":"1.0",
	  "events":[
	    {"kind":"pointer_lock","locked":true},
	    {"kind":"key_down","code":"KeyW"},
	    {"kind":"mouse_move","dx":12.5,"dy":-3},
	    {"kind":"mouse_down","button":2},
	    {"kind":"select_slot","slot":0},
	    {"kind":"key_up","code":"KeyW"}
	  ]}`))
	if err != nil {
		t.Fatalf("decode input: %v", err)
	}
	if len(m.Events) != 6 {
		t.Fatalf("events=%d want 6", len(m.Events))
	}
	if got, want := m.Events[2], (InputEvent{Kind: EventMouseMove, DX: 12.5, DY: -3}); got != want {
		t.Fatalf("mouse_move=%+v want %+v", got, want)
	}
	if m.Events[3].Button != 2 {
		t.Fatalf("button=%d want 2", m.Events[3].Button)
	}
}

func TestDecodeInput_Rejects(t *testing.T) {
	cases := map[string]string{
		"key without code":  `{"type":"INPUT","protocol_version":"1.0","events":[{"kind":"key_down"}]}`,
		"slot without slot": `{"type":"INPUT","protocol_version":"1.0","events":[{"kind":"select_slot"}]}`,
		"slot out of range": `{"type":"INPUT","protocol_version":"1.0","events":[{"kind":"select_slot","slot":5}]}`,
		"unknown kind":      `{"type":"INPUT","protocol_version":"1.0","events":[{"kind":"touch"}]}`,
		"fractional button": `{"type":"INPUT","protocol_version":"1.0","events":[{"kind":"mouse_down","button":1.5}]}`,
		"missing events":    `{"type":"INPUT","protocol_version":"1.0"}`,
	}
	for name, raw := range cases {
		if _, err := DecodeInput([]byte(raw)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestFrameEncodingMatchesSchema(t *testing.T) {
	target := [3]int{1, 7, -2}
	frames := []FrameMsg{
		{
			Type:            TypeFrame,
			ProtocolVersion: Version,
			Tick:            12,
			Camera:          CameraMsg{Pos: [3]float64{0.5, 9.6, 0.5}, Pitch: -0.3},
			Target:          &target,
			Selected:        2,
			Add:             []ProxyAdd{{H: 1, Pos: [3]int{0, 7, 0}, Block: 2}},
			Remove:          []uint64{4, 5},
			Resync:          true,
		},
		{Type: TypeFrame, ProtocolVersion: Version, Selected: 3},
	}
	for _, f := range frames {
		raw, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if err := Validate(TypeFrame, raw); err != nil {
			t.Errorf("validate %s: %v", raw, err)
		}
	}
}

func TestValidate_UnknownType(t *testing.T) {
	if err := Validate("OBS", []byte(`{}`)); err == nil {
		t.Fatalf("expected unknown type rejected")
	}
}

func TestDecodeBase(t *testing.T) {
	b, err := DecodeBase([]byte(`{"type":"INPUT","protocol_version":"1.0","events":[]}`))
	if err != nil {
		t.Fatalf("decode base: %v", err)
	}
	if want := (BaseMessage{Type: TypeInput, ProtocolVersion: Version}); b != want {
		t.Fatalf("base=%+v want %+v", b, want)
	}
}
