package export

import (
	"fmt"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/formats"
	"github.com/muldin/assetpipe/pkg/math"
)

// encodeBones turns the armature's ordered bone list into on-disk bone
// records: parent index with the root sentinel, and the inverse of the
// remapped model-space rest pose, stored row-major.
func encodeBones(arm scene.Armature, remap math.Mat4) ([]formats.Bone, error) {
	src := arm.Bones()
	if len(src) > formats.MaxBones {
		return nil, fmt.Errorf("%w: armature %q has %d bones", formats.ErrTooManyBones, arm.Name(), len(src))
	}

	bones := make([]formats.Bone, len(src))
	for i, b := range src {
		parent := uint8(formats.RootParent)
		if b.Parent >= 0 {
			parent = uint8(b.Parent)
		}

		rest := remap.Mul(b.Rest)
		inv, ok := rest.Inverse()
		if !ok {
			return nil, fmt.Errorf("%w: bone %q", ErrSingularRest, b.Name)
		}

		bones[i] = formats.Bone{
			Parent:      parent,
			InverseBind: inv.Rows(),
		}
	}
	return bones, nil
}
