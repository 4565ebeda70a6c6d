// Package scene abstracts the authoring scene the exporter reads from:
// mesh objects with vertex groups, an armature with a bone hierarchy,
// and keyframed actions evaluated through a stateful session.
package scene

import (
	"github.com/muldin/assetpipe/pkg/math"
)

// Scene is a loaded authoring scene. The exporter only sees the current
// selection, never the full object graph.
type Scene interface {
	// SelectedMeshObjects returns the mesh objects to bake, in a stable
	// order.
	SelectedMeshObjects() []MeshObject

	// SelectedArmature returns the armature modifying the selection, or
	// nil when the export is unskinned.
	SelectedArmature() Armature

	// Actions returns every action to sample as an animation clip.
	Actions() []Action

	// Session gives access to the mutable evaluation state: current
	// frame, pose mode and active action.
	Session() Session
}

// MeshObject is one mesh in the scene.
type MeshObject interface {
	Name() string

	// WorldMatrix is the object-to-world transform.
	WorldMatrix() math.Mat4

	// Evaluate applies modifiers and triangulation and returns a
	// snapshot of the evaluated geometry.
	Evaluate() (*Snapshot, error)

	// VertexGroups returns the group names in group-index order. Group
	// names correspond to bone names when the mesh is skinned.
	VertexGroups() []string
}

// Armature is the bone hierarchy driving the skinned meshes.
type Armature interface {
	Name() string

	// Bones returns the skeleton in the fixed enumeration order used
	// for joint indices and pose streams.
	Bones() []ArmatureBone

	// BoneIndex returns the index of the named bone, or -1 when no
	// bone has that name.
	BoneIndex(name string) int
}

// ArmatureBone is one bone in rest position.
type ArmatureBone struct {
	Name string

	// Parent is the index of the parent bone in enumeration order, or
	// -1 for a root bone. Parents always precede children.
	Parent int

	// Rest is the bone's rest transform in armature space.
	Rest math.Mat4
}

// Action is one named animation with a keyframed frame range.
type Action interface {
	Name() string

	// FrameRange returns the first and last keyframed frame, inclusive.
	FrameRange() (start, end int)
}

// Session is the mutable evaluation state of the scene. Callers that
// change it are expected to restore the previous values when done.
type Session interface {
	PoseMode() bool
	SetPoseMode(on bool)

	CurrentFrame() int
	SetFrame(frame int)

	ActiveAction() Action
	SetActiveAction(a Action)

	// BoneWorld returns bone i's world transform evaluated at the
	// current frame under the active action. Valid only in pose mode.
	BoneWorld(i int) math.Mat4
}

// GroupWeight is one vertex-group influence on a vertex.
type GroupWeight struct {
	Group  int
	Weight float32
}

// Triangle is one face of evaluated geometry. Vertices index into the
// snapshot's position array; UVs and Normals are per-corner.
type Triangle struct {
	Vertices [3]int
	UVs      [3][2]float32
	Normals  [3][3]float32
}

// Snapshot is a mesh evaluated at a point in time: triangulated faces
// over shared vertex positions, with per-vertex group weights.
type Snapshot struct {
	Positions [][3]float32
	Triangles []Triangle

	// Weights[i] lists the group influences of vertex i, in group
	// enumeration order. May be empty for unskinned vertices.
	Weights [][]GroupWeight
}
