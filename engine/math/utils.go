package math

import (
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Perspective builds a GL-convention projection from a vertical field of view in degrees.
func Perspective(fovDeg, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovDeg), aspect, near, far)
}

// LookAt builds a right-handed view matrix.
func LookAt(eye, center, up mgl32.Vec3) mgl32.Mat4 {
	return mgl32.LookAtV(eye, center, up)
}

// VulkanProjection flips clip-space Y so a GL-convention projection renders upright in Vulkan.
func VulkanProjection(proj mgl32.Mat4) mgl32.Mat4 {
	proj[5] *= -1
	return proj
}

// Aspect returns width/height, or 1 when height is zero.
func Aspect(width, height uint32) float32 {
	if height == 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// RotationY returns a rotation of deg degrees around the Y axis.
func RotationY(deg float32) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(mgl32.DegToRad(deg))
}
