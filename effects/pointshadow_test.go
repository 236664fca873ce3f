package effects_test

import (
	"testing"

	"point-shadows/effects"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func project(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	clip := m.Mul4x1(p.Vec4(1))
	return clip.Vec3().Mul(1 / clip[3])
}

func TestShadowTransformsLookAlongFaceAxes(t *testing.T) {
	light := mgl32.Vec3{0, 0, 1.5}
	transforms := effects.ShadowTransforms(light, 1, 25)

	for i, face := range effects.CubeFaces {
		center := project(transforms[i], light.Add(face.Dir.Mul(5)))
		assert.InDelta(t, 0, center[0], 1e-5, "face %d", i)
		assert.InDelta(t, 0, center[1], 1e-5, "face %d", i)
		assert.True(t, center[2] > -1 && center[2] < 1, "face %d depth %v", i, center[2])

		up := project(transforms[i], light.Add(face.Dir.Mul(5)).Add(face.Up))
		assert.Greater(t, up[1], float32(0), "face %d", i)
		assert.InDelta(t, 0, up[0], 1e-5, "face %d", i)
	}
}

func TestShadowTransformsDepthRange(t *testing.T) {
	light := mgl32.Vec3{1, 2, 3}
	transforms := effects.ShadowTransforms(light, 1, 25)

	near := project(transforms[0], light.Add(mgl32.Vec3{1, 0, 0}))
	far := project(transforms[0], light.Add(mgl32.Vec3{25, 0, 0}))
	assert.InDelta(t, -1, near[2], 1e-4)
	assert.InDelta(t, 1, far[2], 1e-4)
}

func TestShadowTransformsCoverNinetyDegrees(t *testing.T) {
	transforms := effects.ShadowTransforms(mgl32.Vec3{}, 1, 25)

	// a point on the 45 degree diagonal between +X and +Z lands on the edge of both faces
	p := mgl32.Vec3{5, 0, 5}
	px := project(transforms[0], p)
	pz := project(transforms[4], p)
	assert.InDelta(t, 1, mgl32.Abs(px[0]), 1e-5)
	assert.InDelta(t, 1, mgl32.Abs(pz[0]), 1e-5)
}

func TestCubeFacesAreOrthonormal(t *testing.T) {
	for i, face := range effects.CubeFaces {
		assert.Equal(t, float32(1), face.Dir.Len(), "face %d", i)
		assert.Equal(t, float32(1), face.Up.Len(), "face %d", i)
		assert.Equal(t, float32(0), face.Dir.Dot(face.Up), "face %d", i)
	}
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, effects.CubeFaces[0].Dir)
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, effects.CubeFaces[5].Dir)
}
