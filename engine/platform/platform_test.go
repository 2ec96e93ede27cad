package platform

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/lumen/engine/core"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		name string
		key  glfw.Key
		want core.KeyCode
	}{
		{"w", glfw.KeyW, core.KEY_W},
		{"q", glfw.KeyQ, core.KEY_Q},
		{"left arrow", glfw.KeyLeft, core.KEY_LEFT},
		{"escape", glfw.KeyEscape, core.KEY_ESCAPE},
		{"unmapped", glfw.KeyF12, core.KEY_UNKNOWN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translateKey(tt.key); got != tt.want {
				t.Errorf("translateKey(%v) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestKeyCallbackFeedsInput(t *testing.T) {
	input := core.NewInput()
	p, _ := New(input)

	p.keyCallback(nil, glfw.KeyA, 0, glfw.Press, 0)
	if !input.IsKeyDown(core.KEY_A) {
		t.Errorf("KEY_A should be down after a press")
	}
	p.keyCallback(nil, glfw.KeyA, 0, glfw.Release, 0)
	if input.IsKeyDown(core.KEY_A) {
		t.Errorf("KEY_A should be up after a release")
	}
}

func TestResizedFlag(t *testing.T) {
	p, _ := New(core.NewInput())
	if p.WasResized() {
		t.Fatalf("new platform reports a resize")
	}
	p.framebufferSizeCallback(nil, 1024, 768)
	if !p.WasResized() {
		t.Errorf("resize callback did not raise the flag")
	}
	p.ResetResizedFlag()
	if p.WasResized() {
		t.Errorf("ResetResizedFlag did not clear the flag")
	}
}

func TestRequestCloseFromAnotherGoroutine(t *testing.T) {
	p, _ := New(core.NewInput())
	if p.ShouldClose() {
		t.Fatalf("new platform wants to close")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.RequestClose()
	}()
	<-done

	if !p.ShouldClose() {
		t.Errorf("ShouldClose() = false after RequestClose")
	}
	// Shutdown without a window must not race with or undo the request.
	p.Shutdown()
	if !p.ShouldClose() {
		t.Errorf("ShouldClose() = false after Shutdown")
	}
}
