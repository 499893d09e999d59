package components

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cbabos/VulkanGameEngineExperiment/engine/math"
)

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering. The view
 * matrix is rebuilt lazily after a move or a rotation.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position mgl32.Vec3
	/**
	 * @brief The rotation of this camera in radians (pitch, yaw, roll).
	 * NOTE: Do not set this directly, use SetEulerRotation() instead
	 * so the view matrix is recalculated when needed.
	 */
	EulerRotation mgl32.Vec3
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool

	viewMatrix mgl32.Mat4
}

// 89 degrees; keeps the camera out of gimbal lock.
const pitchLimit float32 = 1.55334306

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = mgl32.Vec3{}
	c.Position = mgl32.Vec3{}
	c.IsDirty = false
	c.viewMatrix = mgl32.Ident4()
}

func (c *Camera) GetPosition() mgl32.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetEulerRotation() mgl32.Vec3 {
	return c.EulerRotation
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	c.EulerRotation = rotation
	c.EulerRotation[0] = math.Clamp(c.EulerRotation[0], -pitchLimit, pitchLimit)
	c.IsDirty = true
}

// LookAt turns the camera towards target. Roll is reset.
func (c *Camera) LookAt(target mgl32.Vec3) {
	direction := target.Sub(c.Position)
	if direction.Len() == 0 {
		return
	}
	direction = direction.Normalize()
	pitch := float32(gomath.Asin(float64(direction.Y())))
	yaw := float32(gomath.Atan2(float64(-direction.X()), float64(-direction.Z())))
	c.SetEulerRotation(mgl32.Vec3{pitch, yaw, 0})
}

func (c *Camera) rotation() mgl32.Mat4 {
	return mgl32.HomogRotate3DY(c.EulerRotation.Y()).
		Mul4(mgl32.HomogRotate3DX(c.EulerRotation.X())).
		Mul4(mgl32.HomogRotate3DZ(c.EulerRotation.Z()))
}

// GetView returns the inverse of the camera's world transform.
func (c *Camera) GetView() mgl32.Mat4 {
	if c.IsDirty {
		world := mgl32.Translate3D(c.Position.X(), c.Position.Y(), c.Position.Z()).Mul4(c.rotation())
		c.viewMatrix = world.Inv()
		c.IsDirty = false
	}
	return c.viewMatrix
}

func (c *Camera) direction(local mgl32.Vec3) mgl32.Vec3 {
	return c.rotation().Mul4x1(local.Vec4(0)).Vec3()
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.direction(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) Backward() mgl32.Vec3 {
	return c.direction(mgl32.Vec3{0, 0, 1})
}

func (c *Camera) Left() mgl32.Vec3 {
	return c.direction(mgl32.Vec3{-1, 0, 0})
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.direction(mgl32.Vec3{1, 0, 0})
}

func (c *Camera) move(direction mgl32.Vec3, amount float32) {
	c.Position = c.Position.Add(direction.Mul(amount))
	c.IsDirty = true
}

func (c *Camera) MoveForward(amount float32) {
	c.move(c.Forward(), amount)
}

func (c *Camera) MoveBackward(amount float32) {
	c.move(c.Backward(), amount)
}

func (c *Camera) MoveLeft(amount float32) {
	c.move(c.Left(), amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.move(c.Right(), amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.move(mgl32.Vec3{0, 1, 0}, amount)
}

func (c *Camera) MoveDown(amount float32) {
	c.move(mgl32.Vec3{0, -1, 0}, amount)
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation[1] += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation[0] += amount

	// Clamp to avoid Gimbal lock.
	c.EulerRotation[0] = math.Clamp(c.EulerRotation[0], -pitchLimit, pitchLimit)

	c.IsDirty = true
}
