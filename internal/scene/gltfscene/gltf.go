// Package gltfscene presents a glTF document as an exportable scene:
// mesh primitives become evaluated snapshots, the first skin becomes
// the armature, and animations become actions whose keyframes are
// sampled at integer frames through the session.
package gltfscene

import (
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/math"
)

// ErrNoGeometry is returned when the document has no triangle meshes.
var ErrNoGeometry = errors.New("gltfscene: document has no triangle geometry")

// Scene adapts a glTF document to the exporter's scene interface.
type Scene struct {
	doc     *gltf.Document
	meshes  []*meshObject
	arm     *armature
	actions []*action
	sess    session
}

// Open loads a .gltf or .glb document. fps maps animation keyframe
// times to integer frame numbers.
func Open(path string, fps float64) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltfscene: opening %s: %w", path, err)
	}
	return NewFromDocument(doc, fps)
}

// NewFromDocument wraps an already-parsed document.
func NewFromDocument(doc *gltf.Document, fps float64) (*Scene, error) {
	if fps <= 0 {
		fps = 24
	}

	s := &Scene{doc: doc}

	parents := nodeParents(doc)
	rest := restWorlds(doc, parents)

	if len(doc.Skins) > 0 {
		arm, err := newArmature(doc, 0, parents, rest)
		if err != nil {
			return nil, err
		}
		s.arm = arm
	}

	for ni, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		mo, err := newMeshObject(doc, uint32(ni), rest[ni], s.arm)
		if err != nil {
			return nil, err
		}
		s.meshes = append(s.meshes, mo)
	}
	if len(s.meshes) == 0 && s.arm == nil {
		return nil, ErrNoGeometry
	}

	for _, anim := range doc.Animations {
		act, err := newAction(doc, anim, fps)
		if err != nil {
			return nil, err
		}
		s.actions = append(s.actions, act)
	}

	s.sess = session{
		doc:     doc,
		arm:     s.arm,
		parents: parents,
		fps:     fps,
	}
	return s, nil
}

func (s *Scene) SelectedMeshObjects() []scene.MeshObject {
	out := make([]scene.MeshObject, len(s.meshes))
	for i, m := range s.meshes {
		out[i] = m
	}
	return out
}

func (s *Scene) SelectedArmature() scene.Armature {
	if s.arm == nil {
		return nil
	}
	return s.arm
}

func (s *Scene) Actions() []scene.Action {
	out := make([]scene.Action, len(s.actions))
	for i, a := range s.actions {
		out[i] = a
	}
	return out
}

func (s *Scene) Session() scene.Session { return &s.sess }

// nodeParents maps every node to its parent node index, or -1 for
// roots.
func nodeParents(doc *gltf.Document) []int {
	parents := make([]int, len(doc.Nodes))
	for i := range parents {
		parents[i] = -1
	}
	for pi, node := range doc.Nodes {
		for _, ci := range node.Children {
			parents[ci] = pi
		}
	}
	return parents
}

var identityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// localMatrix builds a node's rest-pose local transform. A non-trivial
// Matrix wins over TRS; zero-value TRS fields fall back to the glTF
// defaults.
func localMatrix(n *gltf.Node) math.Mat4 {
	if n.Matrix != ([16]float32{}) && n.Matrix != identityMatrix {
		var m math.Mat4 // glTF matrices are column-major, same as ours
		for i, v := range n.Matrix {
			m[i] = float32(v)
		}
		return m
	}
	return math.Compose(nodeTranslation(n), nodeRotation(n), nodeScale(n))
}

func nodeTranslation(n *gltf.Node) math.Vec3 {
	return math.Vec3{
		X: float32(n.Translation[0]),
		Y: float32(n.Translation[1]),
		Z: float32(n.Translation[2]),
	}
}

func nodeRotation(n *gltf.Node) math.Quat {
	r := n.Rotation
	if r == ([4]float32{}) {
		return math.QuatIdentity()
	}
	return math.Quat{
		X: float32(r[0]),
		Y: float32(r[1]),
		Z: float32(r[2]),
		W: float32(r[3]),
	}
}

func nodeScale(n *gltf.Node) math.Vec3 {
	s := n.Scale
	if s == ([3]float32{}) {
		return math.Vec3{X: 1, Y: 1, Z: 1}
	}
	return math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])}
}

// restWorlds computes every node's rest-pose world transform.
func restWorlds(doc *gltf.Document, parents []int) []math.Mat4 {
	worlds := make([]math.Mat4, len(doc.Nodes))
	done := make([]bool, len(doc.Nodes))

	var resolve func(i int) math.Mat4
	resolve = func(i int) math.Mat4 {
		if done[i] {
			return worlds[i]
		}
		local := localMatrix(doc.Nodes[i])
		if p := parents[i]; p >= 0 {
			worlds[i] = resolve(p).Mul(local)
		} else {
			worlds[i] = local
		}
		done[i] = true
		return worlds[i]
	}

	for i := range doc.Nodes {
		resolve(i)
	}
	return worlds
}

// armature is the first skin of the document presented as a bone
// hierarchy in joint order.
type armature struct {
	name    string
	bones   []scene.ArmatureBone
	byName  map[string]int
	nodeIdx []int // bone -> node index
}

func newArmature(doc *gltf.Document, skinIndex int, parents []int, rest []math.Mat4) (*armature, error) {
	skin := doc.Skins[skinIndex]

	jointOf := make(map[int]int, len(skin.Joints)) // node -> bone
	for bi, ni := range skin.Joints {
		jointOf[int(ni)] = bi
	}

	a := &armature{
		name:    skin.Name,
		byName:  make(map[string]int, len(skin.Joints)),
		nodeIdx: make([]int, len(skin.Joints)),
	}
	if a.name == "" {
		a.name = "skin"
	}

	for bi, ni := range skin.Joints {
		node := doc.Nodes[ni]
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("joint_%d", bi)
		}

		parent := -1
		for p := parents[ni]; p >= 0; p = parents[p] {
			if pb, ok := jointOf[p]; ok {
				parent = pb
				break
			}
		}
		if parent >= bi {
			return nil, fmt.Errorf("gltfscene: skin %d joints are not parent-first ordered (joint %d)", skinIndex, bi)
		}

		a.bones = append(a.bones, scene.ArmatureBone{
			Name:   name,
			Parent: parent,
			Rest:   rest[ni],
		})
		a.byName[name] = bi
		a.nodeIdx[bi] = int(ni)
	}
	return a, nil
}

func (a *armature) Name() string { return a.name }

func (a *armature) Bones() []scene.ArmatureBone { return a.bones }

func (a *armature) BoneIndex(name string) int {
	if i, ok := a.byName[name]; ok {
		return i
	}
	return -1
}
