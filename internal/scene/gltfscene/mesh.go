package gltfscene

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/math"
)

// meshObject is one mesh-bearing node. The snapshot is assembled once
// at load time; glTF geometry is already triangulated and modifier-free
// so there is nothing to re-evaluate per export.
type meshObject struct {
	name   string
	world  math.Mat4
	snap   scene.Snapshot
	groups []string
}

func newMeshObject(doc *gltf.Document, nodeIdx uint32, world math.Mat4, arm *armature) (*meshObject, error) {
	node := doc.Nodes[nodeIdx]
	mesh := doc.Meshes[*node.Mesh]

	mo := &meshObject{
		name:  node.Name,
		world: world,
	}
	if mo.name == "" {
		mo.name = mesh.Name
	}
	if mo.name == "" {
		mo.name = fmt.Sprintf("mesh_%d", *node.Mesh)
	}

	skinned := node.Skin != nil && arm != nil
	if skinned {
		for _, b := range arm.bones {
			mo.groups = append(mo.groups, b.Name)
		}
	}

	for pi, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			continue
		}
		if err := mo.appendPrimitive(doc, prim, skinned); err != nil {
			return nil, fmt.Errorf("gltfscene: mesh %q primitive %d: %w", mo.name, pi, err)
		}
	}
	if len(mo.snap.Triangles) == 0 {
		return nil, fmt.Errorf("gltfscene: mesh %q: %w", mo.name, ErrNoGeometry)
	}
	return mo, nil
}

func (m *meshObject) appendPrimitive(doc *gltf.Document, prim *gltf.Primitive, skinned bool) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return err
	}

	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return err
		}
	}
	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return err
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a triangle list", len(indices))
	}

	weights, err := readSkin(doc, prim, skinned, len(positions))
	if err != nil {
		return err
	}

	base := len(m.snap.Positions)
	m.snap.Positions = append(m.snap.Positions, positions...)
	m.snap.Weights = append(m.snap.Weights, weights...)

	for i := 0; i+2 < len(indices); i += 3 {
		var tri scene.Triangle
		for c := 0; c < 3; c++ {
			vi := int(indices[i+c])
			tri.Vertices[c] = base + vi
			if vi < len(uvs) {
				tri.UVs[c] = uvs[vi]
			}
			if vi < len(normals) {
				tri.Normals[c] = normals[vi]
			}
		}
		if normals == nil {
			n := flatNormal(positions, indices[i:i+3])
			tri.Normals = [3][3]float32{n, n, n}
		}
		m.snap.Triangles = append(m.snap.Triangles, tri)
	}
	return nil
}

// readSkin resolves per-vertex joint influences, in joint-slot order.
func readSkin(doc *gltf.Document, prim *gltf.Primitive, skinned bool, vertexCount int) ([][]scene.GroupWeight, error) {
	out := make([][]scene.GroupWeight, vertexCount)
	if !skinned {
		return out, nil
	}

	jIdx, jOK := prim.Attributes[gltf.JOINTS_0]
	wIdx, wOK := prim.Attributes[gltf.WEIGHTS_0]
	if !jOK || !wOK {
		return out, nil
	}

	joints, err := modeler.ReadJoints(doc, doc.Accessors[jIdx], nil)
	if err != nil {
		return nil, err
	}
	weights, err := modeler.ReadWeights(doc, doc.Accessors[wIdx], nil)
	if err != nil {
		return nil, err
	}

	for v := 0; v < vertexCount && v < len(joints) && v < len(weights); v++ {
		for s := 0; s < 4; s++ {
			if weights[v][s] <= 0 {
				continue
			}
			out[v] = append(out[v], scene.GroupWeight{
				Group:  int(joints[v][s]),
				Weight: weights[v][s],
			})
		}
	}
	return out, nil
}

// flatNormal computes a face normal for primitives without NORMAL data.
func flatNormal(positions [][3]float32, idx []uint32) [3]float32 {
	a := positions[idx[0]]
	b := positions[idx[1]]
	c := positions[idx[2]]
	ab := math.Vec3{X: b[0] - a[0], Y: b[1] - a[1], Z: b[2] - a[2]}
	ac := math.Vec3{X: c[0] - a[0], Y: c[1] - a[1], Z: c[2] - a[2]}
	return ab.Cross(ac).Normalize().Array()
}

func (m *meshObject) Name() string { return m.name }

func (m *meshObject) WorldMatrix() math.Mat4 { return m.world }

func (m *meshObject) VertexGroups() []string { return m.groups }

func (m *meshObject) Evaluate() (*scene.Snapshot, error) { return &m.snap, nil }
