package systems

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/lumen/engine/core"
	lmath "github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/scene"
)

// Pitch limit in radians, just short of looking straight up or down.
const maxPitch = 1.5

type KeyMappings struct {
	MoveLeft     core.KeyCode
	MoveRight    core.KeyCode
	MoveForward  core.KeyCode
	MoveBackward core.KeyCode
	MoveUp       core.KeyCode
	MoveDown     core.KeyCode
	LookLeft     core.KeyCode
	LookRight    core.KeyCode
	LookUp       core.KeyCode
	LookDown     core.KeyCode
}

func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		MoveLeft:     core.KEY_A,
		MoveRight:    core.KEY_D,
		MoveForward:  core.KEY_W,
		MoveBackward: core.KEY_S,
		MoveUp:       core.KEY_E,
		MoveDown:     core.KEY_Q,
		LookLeft:     core.KEY_LEFT,
		LookRight:    core.KEY_RIGHT,
		LookUp:       core.KEY_UP,
		LookDown:     core.KEY_DOWN,
	}
}

/**
 * @brief Flies a game object, usually the viewer, over the XZ plane.
 * Speeds are in units (or radians) per second.
 */
type KeyboardMovementController struct {
	Keys      KeyMappings
	MoveSpeed float32
	LookSpeed float32
}

func NewKeyboardMovementController(moveSpeed, lookSpeed float32) *KeyboardMovementController {
	return &KeyboardMovementController{
		Keys:      DefaultKeyMappings(),
		MoveSpeed: moveSpeed,
		LookSpeed: lookSpeed,
	}
}

// MoveInPlaneXZ applies one frame of look and move input to the object transform.
func (kc *KeyboardMovementController) MoveInPlaneXZ(input *core.Input, dt float32, g *scene.GameObject) {
	rotate := mgl32.Vec3{}
	if input.IsKeyDown(kc.Keys.LookRight) {
		rotate[1] += 1
	}
	if input.IsKeyDown(kc.Keys.LookLeft) {
		rotate[1] -= 1
	}
	if input.IsKeyDown(kc.Keys.LookUp) {
		rotate[0] += 1
	}
	if input.IsKeyDown(kc.Keys.LookDown) {
		rotate[0] -= 1
	}

	t := &g.Transform
	if rotate.Dot(rotate) > mgl32.Epsilon {
		t.Rotation = t.Rotation.Add(rotate.Normalize().Mul(kc.LookSpeed * dt))
	}

	// Limit pitch values between about +/- 85ish degrees
	t.Rotation[0] = lmath.Clamp(t.Rotation[0], -maxPitch, maxPitch)
	t.Rotation[1] = lmath.Wrap(t.Rotation[1], lmath.TwoPi)

	yaw := float64(t.Rotation[1])
	forwardDir := mgl32.Vec3{float32(gomath.Sin(yaw)), 0, float32(gomath.Cos(yaw))}
	rightDir := mgl32.Vec3{forwardDir[2], 0, -forwardDir[0]}
	upDir := mgl32.Vec3{0, -1, 0}

	moveDir := mgl32.Vec3{}
	if input.IsKeyDown(kc.Keys.MoveForward) {
		moveDir = moveDir.Add(forwardDir)
	}
	if input.IsKeyDown(kc.Keys.MoveBackward) {
		moveDir = moveDir.Sub(forwardDir)
	}
	if input.IsKeyDown(kc.Keys.MoveRight) {
		moveDir = moveDir.Add(rightDir)
	}
	if input.IsKeyDown(kc.Keys.MoveLeft) {
		moveDir = moveDir.Sub(rightDir)
	}
	if input.IsKeyDown(kc.Keys.MoveUp) {
		moveDir = moveDir.Add(upDir)
	}
	if input.IsKeyDown(kc.Keys.MoveDown) {
		moveDir = moveDir.Sub(upDir)
	}

	if moveDir.Dot(moveDir) > mgl32.Epsilon {
		t.Translation = t.Translation.Add(moveDir.Normalize().Mul(kc.MoveSpeed * dt))
	}
}
