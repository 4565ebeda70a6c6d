package scene

import (
	"github.com/muldin/assetpipe/pkg/math"
)

// MemScene is an in-memory Scene used by tests and by callers that
// build scenes programmatically.
type MemScene struct {
	Meshes []*MemMesh
	Arm    *MemArmature
	Acts   []*MemAction
	State  MemSession
}

func (s *MemScene) SelectedMeshObjects() []MeshObject {
	out := make([]MeshObject, len(s.Meshes))
	for i, m := range s.Meshes {
		out[i] = m
	}
	return out
}

func (s *MemScene) SelectedArmature() Armature {
	if s.Arm == nil {
		return nil
	}
	return s.Arm
}

func (s *MemScene) Actions() []Action {
	out := make([]Action, len(s.Acts))
	for i, a := range s.Acts {
		out[i] = a
	}
	return out
}

func (s *MemScene) Session() Session { return &s.State }

// MemMesh is an in-memory MeshObject.
type MemMesh struct {
	ObjName string
	World   math.Mat4
	Snap    Snapshot
	Groups  []string
	EvalErr error
}

func (m *MemMesh) Name() string { return m.ObjName }

func (m *MemMesh) WorldMatrix() math.Mat4 { return m.World }

func (m *MemMesh) VertexGroups() []string { return m.Groups }

func (m *MemMesh) Evaluate() (*Snapshot, error) {
	if m.EvalErr != nil {
		return nil, m.EvalErr
	}
	return &m.Snap, nil
}

// MemArmature is an in-memory Armature.
type MemArmature struct {
	ArmName  string
	BoneList []ArmatureBone
}

func (a *MemArmature) Name() string { return a.ArmName }

func (a *MemArmature) Bones() []ArmatureBone { return a.BoneList }

func (a *MemArmature) BoneIndex(name string) int {
	for i, b := range a.BoneList {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// MemAction is an in-memory Action.
type MemAction struct {
	ActName    string
	Start, End int
}

func (a *MemAction) Name() string { return a.ActName }

func (a *MemAction) FrameRange() (int, int) { return a.Start, a.End }

// MemSession is an in-memory Session. PoseFn computes bone world
// transforms from the current state; when nil, BoneWorld returns the
// identity.
type MemSession struct {
	InPoseMode bool
	Frame      int
	Action     Action

	PoseFn func(bone, frame int, action Action) math.Mat4
}

func (s *MemSession) PoseMode() bool { return s.InPoseMode }

func (s *MemSession) SetPoseMode(on bool) { s.InPoseMode = on }

func (s *MemSession) CurrentFrame() int { return s.Frame }

func (s *MemSession) SetFrame(frame int) { s.Frame = frame }

func (s *MemSession) ActiveAction() Action { return s.Action }

func (s *MemSession) SetActiveAction(a Action) { s.Action = a }

func (s *MemSession) BoneWorld(i int) math.Mat4 {
	if s.PoseFn == nil {
		return math.Identity()
	}
	return s.PoseFn(i, s.Frame, s.Action)
}
