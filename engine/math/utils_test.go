package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, Clamp(7, 0, 5))
	assert.Equal(t, uint32(2), Clamp(uint32(1), 2, 8))
	assert.Equal(t, 0.5, Clamp(0.5, 0.0, 1.0))
}

func TestVulkanProjectionFlipsY(t *testing.T) {
	p := Perspective(45, 4.0/3.0, 0.1, 20)
	v := VulkanProjection(p)
	assert.Equal(t, -p.At(1, 1), v.At(1, 1))
	assert.Equal(t, p.At(0, 0), v.At(0, 0))
	// source untouched
	assert.True(t, p.At(1, 1) > 0)
}

func TestAspect(t *testing.T) {
	assert.InDelta(t, 1024.0/768.0, Aspect(1024, 768), 1e-6)
	assert.Equal(t, float32(1), Aspect(10, 0))
}

func TestLookAtMapsCenterToNegativeZ(t *testing.T) {
	view := LookAt(mgl32.Vec3{3, 3, 2.5}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	origin := view.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, origin.X(), 1e-5)
	assert.InDelta(t, 0, origin.Y(), 1e-5)
	assert.True(t, origin.Z() < 0)
}

func TestRotationY(t *testing.T) {
	r := RotationY(90)
	v := r.Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 0, v.X(), 1e-5)
	assert.InDelta(t, -1, v.Z(), 1e-5)
}

func TestTransformLocalOrder(t *testing.T) {
	tr := TransformFromPositionRotationScale(
		mgl32.Vec3{1, 2, 3},
		mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
		mgl32.Vec3{2, 2, 2},
	)
	// scale, then rotate, then translate
	p := tr.GetLocal().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, 2, p.Y(), 1e-5)
	assert.InDelta(t, 1, p.Z(), 1e-5)
	assert.False(t, tr.IsDirty)
}

func TestTransformParentChain(t *testing.T) {
	parent := TransformCreate()
	child := TransformFromPosition(mgl32.Vec3{3, 0, 0})
	child.Parent = parent

	parent.Rotate(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))
	p := child.GetWorld().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, p.X(), 1e-5)
	assert.InDelta(t, -3, p.Z(), 1e-5)

	var none *Transform
	assert.Equal(t, mgl32.Ident4(), none.GetWorld())
}
