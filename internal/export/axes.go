package export

import (
	"fmt"

	"github.com/muldin/assetpipe/pkg/math"
)

// Axis names one signed world axis.
type Axis string

const (
	AxisX    Axis = "X"
	AxisNegX Axis = "-X"
	AxisY    Axis = "Y"
	AxisNegY Axis = "-Y"
	AxisZ    Axis = "Z"
	AxisNegZ Axis = "-Z"
)

// ParseAxis validates an axis name from configuration.
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case AxisX, AxisNegX, AxisY, AxisNegY, AxisZ, AxisNegZ:
		return Axis(s), nil
	}
	return "", fmt.Errorf("export: invalid axis %q", s)
}

func (a Axis) vector() math.Vec3 {
	switch a {
	case AxisX:
		return math.Vec3{X: 1}
	case AxisNegX:
		return math.Vec3{X: -1}
	case AxisY:
		return math.Vec3{Y: 1}
	case AxisNegY:
		return math.Vec3{Y: -1}
	case AxisZ:
		return math.Vec3{Z: 1}
	case AxisNegZ:
		return math.Vec3{Z: -1}
	}
	return math.Vec3{}
}

// AxisConfig selects the target coordinate convention. The authoring
// convention is fixed at forward = -Y, up = Z.
type AxisConfig struct {
	Forward Axis
	Up      Axis
}

// Matrix builds the change-of-basis transform that premultiplies every
// world-space matrix used by the pipeline. Colinear forward/up is
// rejected with ErrDegenerateAxes.
func (c AxisConfig) Matrix() (math.Mat4, error) {
	fwd := c.Forward.vector()
	up := c.Up.vector()
	right := up.Cross(fwd)
	if right.Length() < 1e-6 {
		return math.Identity(), fmt.Errorf("%w: forward=%s up=%s", ErrDegenerateAxes, c.Forward, c.Up)
	}

	// Authoring basis: right=+X, forward=-Y, up=+Z.
	srcRight := math.Vec3{X: 1}
	srcFwd := math.Vec3{Y: -1}
	srcUp := math.Vec3{Z: 1}

	// Both bases are orthonormal, so dst * transpose(src) maps source
	// axes onto the destination axes.
	dst := basis(right, fwd, up)
	src := basis(srcRight, srcFwd, srcUp)
	return dst.Mul(transpose(src)), nil
}

// basis builds a rotation matrix with the given column vectors.
func basis(c0, c1, c2 math.Vec3) math.Mat4 {
	m := math.Identity()
	m[0], m[1], m[2] = c0.X, c0.Y, c0.Z
	m[4], m[5], m[6] = c1.X, c1.Y, c1.Z
	m[8], m[9], m[10] = c2.X, c2.Y, c2.Z
	return m
}

func transpose(m math.Mat4) math.Mat4 {
	var t math.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t[r*4+c] = m[c*4+r]
		}
	}
	return t
}
