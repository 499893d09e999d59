package components

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-4

func vec(v mgl32.Vec3) []float32 { return v[:] }

func TestCameraDefaultsToIdentity(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl32.Ident4(), c.GetView())
	assert.InDeltaSlice(t, []float32{0, 0, -1}, vec(c.Forward()), eps)
	assert.InDeltaSlice(t, []float32{1, 0, 0}, vec(c.Right()), eps)
}

func TestCameraLookAtPutsTargetOnForwardAxis(t *testing.T) {
	c := NewCamera()
	c.SetPosition(mgl32.Vec3{3, 3, 2.5})
	c.LookAt(mgl32.Vec3{})

	want := mgl32.Vec3{-3, -3, -2.5}.Normalize()
	assert.InDeltaSlice(t, vec(want), vec(c.Forward()), eps)

	// The target ends up straight ahead in view space.
	distance := mgl32.Vec3{3, 3, 2.5}.Len()
	p := c.GetView().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), eps)
	assert.InDelta(t, 0, p.Y(), eps)
	assert.InDelta(t, -distance, p.Z(), eps)
}

func TestCameraViewIsRebuiltOnlyWhenDirty(t *testing.T) {
	c := NewCamera()
	c.SetPosition(mgl32.Vec3{0, 0, 5})
	assert.True(t, c.IsDirty)

	view := c.GetView()
	assert.False(t, c.IsDirty)
	assert.InDelta(t, -5, view.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Z(), eps)

	c.MoveForward(2)
	assert.True(t, c.IsDirty)
	assert.InDeltaSlice(t, []float32{0, 0, 3}, vec(c.GetPosition()), eps)

	c.MoveUp(1)
	c.MoveLeft(1)
	assert.InDeltaSlice(t, []float32{-1, 1, 3}, vec(c.GetPosition()), eps)
}

func TestCameraPitchIsClamped(t *testing.T) {
	c := NewCamera()
	c.Pitch(10)
	assert.InDelta(t, pitchLimit, c.GetEulerRotation().X(), eps)
	c.Pitch(-20)
	assert.InDelta(t, -pitchLimit, c.GetEulerRotation().X(), eps)

	c.Reset()
	c.Yaw(mgl32.DegToRad(90))
	assert.InDeltaSlice(t, []float32{-1, 0, 0}, vec(c.Forward()), eps)
}
