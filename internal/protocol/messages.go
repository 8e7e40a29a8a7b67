package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ClientName      string `json:"client_name,omitempty"`
}

// Input event kinds.
const (
	EventKeyDown     = "key_down"
	EventKeyUp       = "key_up"
	EventMouseMove   = "mouse_move"
	EventMouseDown   = "mouse_down"
	EventPointerLock = "pointer_lock"
	EventSelectSlot  = "select_slot"
)

// INPUT (client -> server): raw browser events since the previous INPUT.
type InputMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Events          []InputEvent `json:"events"`
}

type InputEvent struct {
	Kind   string  `json:"kind"`
	Code   string  `json:"code,omitempty"` // KeyboardEvent.code
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Button int     `json:"button,omitempty"` // MouseEvent.button
	Locked bool    `json:"locked,omitempty"`
	Slot   int     `json:"slot,omitempty"` // 0-based
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	SessionID       string         `json:"session_id"`
	WorldParams     WorldParams    `json:"world_params"`
	BlockPalette    []PaletteEntry `json:"block_palette"`
	PaletteDigest   string         `json:"palette_digest"`
}

type WorldParams struct {
	Seed       int64   `json:"seed"`
	TickRateHz int     `json:"tick_rate_hz"`
	Height     int     `json:"height"`
	HalfWidth  int     `json:"half_width"`
	ViewRadius int     `json:"view_radius"`
	Reach      float64 `json:"reach"`
	Hotbar     []int   `json:"hotbar"`
	EyeOffset  float64 `json:"eye_offset"`
}

type PaletteEntry struct {
	ID      int    `json:"id"`
	Key     string `json:"key"`
	Name    string `json:"name"`
	Texture string `json:"texture,omitempty"`
	Solid   bool   `json:"solid"`
}

// FRAME (server -> client): proxy commands of one tick plus the camera.
// Renderers apply add before remove. A resync frame first drops every proxy
// the renderer holds.
type FrameMsg struct {
	Type            string     `json:"type"`
	ProtocolVersion string     `json:"protocol_version"`
	Tick            uint64     `json:"tick"`
	Camera          CameraMsg  `json:"camera"`
	Target          *[3]int    `json:"target"`
	Selected        int        `json:"selected"`
	Add             []ProxyAdd `json:"add"`
	Remove          []uint64   `json:"remove"`
	Resync          bool       `json:"resync,omitempty"`
}

type CameraMsg struct {
	Pos   [3]float64 `json:"pos"`
	Yaw   float64    `json:"yaw"`
	Pitch float64    `json:"pitch"`
}

type ProxyAdd struct {
	H     uint64 `json:"h"`
	Pos   [3]int `json:"pos"`
	Block int    `json:"block"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
