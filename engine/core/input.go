package core

// Key code definitions
type KeyCode uint16

const (
	KEY_UNKNOWN KeyCode = 0x00
	KEY_ENTER   KeyCode = 0x0D
	KEY_ESCAPE  KeyCode = 0x1B
	KEY_SPACE   KeyCode = 0x20
	KEY_LEFT    KeyCode = 0x25
	KEY_UP      KeyCode = 0x26
	KEY_RIGHT   KeyCode = 0x27
	KEY_DOWN    KeyCode = 0x28
	KEY_A       KeyCode = 0x41
	KEY_D       KeyCode = 0x44
	KEY_E       KeyCode = 0x45
	KEY_Q       KeyCode = 0x51
	KEY_S       KeyCode = 0x53
	KEY_W       KeyCode = 0x57
)

// Keyboard state structure
type KeyboardState struct {
	Keys [256]bool
}

// Input holds current and previous keyboard states. The platform feeds it from
// window callbacks and the engine snapshots it once per frame.
type Input struct {
	current  KeyboardState
	previous KeyboardState
}

func NewInput() *Input {
	return &Input{}
}

// Update copies the current state into the previous one.
func (in *Input) Update() {
	in.previous = in.current
}

func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if int(key) >= len(in.current.Keys) {
		return
	}
	in.current.Keys[key] = pressed
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	if int(key) >= len(in.current.Keys) {
		return false
	}
	return in.current.Keys[key]
}

func (in *Input) IsKeyUp(key KeyCode) bool {
	return !in.IsKeyDown(key)
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	if int(key) >= len(in.previous.Keys) {
		return false
	}
	return in.previous.Keys[key]
}

// Pressed reports a key that went down since the last Update.
func (in *Input) Pressed(key KeyCode) bool {
	return in.IsKeyDown(key) && !in.WasKeyDown(key)
}
