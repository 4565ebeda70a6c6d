package export

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/formats"
	"github.com/muldin/assetpipe/pkg/math"
)

// deduplicator assigns stable indices to unique vertex records. Indices
// follow first-seen order; interning an already-seen value returns the
// original index. The full record is the map key, so lookup covers
// every field that equality does.
type deduplicator struct {
	index map[formats.Vertex]int
	verts []formats.Vertex
}

func newDeduplicator() *deduplicator {
	return &deduplicator{index: make(map[formats.Vertex]int)}
}

func (d *deduplicator) intern(v formats.Vertex) int {
	if i, ok := d.index[v]; ok {
		return i
	}
	i := len(d.verts)
	d.index[v] = i
	d.verts = append(d.verts, v)
	return i
}

// normalizeWeights divides the weights by their sum, or leaves them all
// zero when the sum is exactly zero.
func normalizeWeights(w [4]float32) [4]float32 {
	sum := w[0] + w[1] + w[2] + w[3]
	if sum == 0 {
		return w
	}
	for i := range w {
		w[i] /= sum
	}
	return w
}

// groupBinding maps an object's vertex-group indices to bone indices.
// Groups with no matching bone map to -1 and are skipped during baking.
type groupBinding []int

func bindGroups(obj scene.MeshObject, arm scene.Armature, log *zap.Logger) groupBinding {
	names := obj.VertexGroups()
	bind := make(groupBinding, len(names))
	for i, name := range names {
		bind[i] = arm.BoneIndex(name)
		if bind[i] < 0 {
			log.Warn("vertex group has no matching bone",
				zap.String("object", obj.Name()),
				zap.String("group", name))
		}
	}
	return bind
}

// skinCorner resolves the joint bindings of one source vertex: bone
// influences in group enumeration order, cut to the first four, then
// normalized. With sortWeights the influences are ordered by descending
// weight before the cut instead.
func skinCorner(weights []scene.GroupWeight, bind groupBinding, sortWeights bool) ([4]uint8, [4]float32) {
	resolved := make([]scene.GroupWeight, 0, len(weights))
	for _, gw := range weights {
		if gw.Group < 0 || gw.Group >= len(bind) || bind[gw.Group] < 0 {
			continue
		}
		resolved = append(resolved, scene.GroupWeight{Group: bind[gw.Group], Weight: gw.Weight})
	}
	if sortWeights {
		sort.SliceStable(resolved, func(i, j int) bool {
			return resolved[i].Weight > resolved[j].Weight
		})
	}

	var joints [4]uint8
	var raw [4]float32
	for i, gw := range resolved {
		if i == 4 {
			break
		}
		joints[i] = uint8(gw.Group)
		raw[i] = gw.Weight
	}
	return joints, normalizeWeights(raw)
}

// bakeMeshes walks every selected object's evaluated triangles and
// produces the deduplicated indexed mesh. Positions go through
// remap*world; normals through the same transform without translation.
// The V texture coordinate is flipped to the runtime origin.
func bakeMeshes(objects []scene.MeshObject, arm scene.Armature, remap math.Mat4, sortWeights bool, log *zap.Logger) (*formats.MeshAsset, error) {
	dedup := newDeduplicator()
	var faces [][3]uint16

	for _, obj := range objects {
		snap, err := obj.Evaluate()
		if err != nil {
			return nil, fmt.Errorf("export: evaluating %q: %w", obj.Name(), err)
		}
		xform := remap.Mul(obj.WorldMatrix())

		var bind groupBinding
		if arm != nil {
			bind = bindGroups(obj, arm, log)
		}

		for _, tri := range snap.Triangles {
			var face [3]uint16
			for c := 0; c < 3; c++ {
				vi := tri.Vertices[c]
				pos := xform.TransformPoint(snap.Positions[vi])
				n := xform.TransformDirection(tri.Normals[c])
				nrm := math.Vec3{X: n[0], Y: n[1], Z: n[2]}.Normalize()

				v := formats.Vertex{
					Position: pos,
					UV:       [2]float32{tri.UVs[c][0], 1 - tri.UVs[c][1]},
					Normal:   nrm.Array(),
				}
				if arm != nil {
					v.JointIndices, v.JointWeights = skinCorner(snap.Weights[vi], bind, sortWeights)
				}

				idx := dedup.intern(v)
				if idx > formats.MaxVertices-1 {
					return nil, fmt.Errorf("%w: object %q", formats.ErrTooManyVertices, obj.Name())
				}
				face[c] = uint16(idx)
			}
			faces = append(faces, face)
			if len(faces) > formats.MaxFaces {
				return nil, fmt.Errorf("%w: object %q", formats.ErrTooManyFaces, obj.Name())
			}
		}
	}

	return &formats.MeshAsset{
		HasSkeleton: arm != nil,
		Faces:       faces,
		Vertices:    dedup.verts,
	}, nil
}
