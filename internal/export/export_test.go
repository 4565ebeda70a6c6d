package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/formats"
	"github.com/muldin/assetpipe/pkg/math"
)

func defaultOpts() Options {
	return Options{Forward: AxisNegY, Up: AxisZ}
}

// twoBoneScene builds a root+child armature with one action spanning
// frames 1-10, the child animated with a sliding translation.
func twoBoneScene() *scene.MemScene {
	arm := &scene.MemArmature{
		ArmName: "rig",
		BoneList: []scene.ArmatureBone{
			{Name: "root", Parent: -1, Rest: math.Identity()},
			{Name: "child", Parent: 0, Rest: math.Translate(0, 0, 1)},
		},
	}
	act := &scene.MemAction{ActName: "walk", Start: 1, End: 10}
	sc := &scene.MemScene{
		Arm:  arm,
		Acts: []*scene.MemAction{act},
	}
	sc.State.PoseFn = func(bone, frame int, _ scene.Action) math.Mat4 {
		if bone == 0 {
			return math.Identity()
		}
		return math.Translate(float32(frame)*0.1, 0, 1)
	}
	return sc
}

func TestExportMeshNoSelection(t *testing.T) {
	sc := &scene.MemScene{}
	err := ExportMesh(sc, filepath.Join(t.TempDir(), "out.mesh"), defaultOpts())
	if !errors.Is(err, ErrNoMeshSelected) {
		t.Errorf("err = %v, want ErrNoMeshSelected", err)
	}
}

func TestExportSkeletonNoArmature(t *testing.T) {
	sc := &scene.MemScene{}
	err := ExportSkeleton(sc, filepath.Join(t.TempDir(), "out.skel"), defaultOpts())
	if !errors.Is(err, ErrNoArmature) {
		t.Errorf("err = %v, want ErrNoArmature", err)
	}
}

func TestExportMeshDegenerateAxes(t *testing.T) {
	sc := &scene.MemScene{
		Meshes: []*scene.MemMesh{{ObjName: "quad", World: math.Identity(), Snap: quadSnapshot()}},
	}
	err := ExportMesh(sc, filepath.Join(t.TempDir(), "out.mesh"), Options{Forward: AxisZ, Up: AxisNegZ})
	if !errors.Is(err, ErrDegenerateAxes) {
		t.Errorf("err = %v, want ErrDegenerateAxes", err)
	}
}

func TestExportMeshWritesDecodableAsset(t *testing.T) {
	sc := &scene.MemScene{
		Meshes: []*scene.MemMesh{{ObjName: "quad", World: math.Identity(), Snap: quadSnapshot()}},
	}
	path := filepath.Join(t.TempDir(), "out.mesh")
	if err := ExportMesh(sc, path, defaultOpts()); err != nil {
		t.Fatalf("ExportMesh: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading asset: %v", err)
	}
	mesh, err := formats.DecodeMesh(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding asset: %v", err)
	}
	if len(mesh.Faces) != 2 || len(mesh.Vertices) != 4 {
		t.Errorf("decoded %d faces / %d vertices, want 2 / 4", len(mesh.Faces), len(mesh.Vertices))
	}
}

func TestExportMeshRestoresSession(t *testing.T) {
	sc := twoBoneScene()
	sc.Meshes = []*scene.MemMesh{{ObjName: "quad", World: math.Identity(), Snap: quadSnapshot()}}
	sc.State.InPoseMode = true
	sc.State.Frame = 7

	path := filepath.Join(t.TempDir(), "out.mesh")
	if err := ExportMesh(sc, path, defaultOpts()); err != nil {
		t.Fatalf("ExportMesh: %v", err)
	}
	if !sc.State.InPoseMode {
		t.Error("pose mode not restored after mesh export")
	}
	if sc.State.Frame != 7 {
		t.Errorf("frame = %d after export, want 7", sc.State.Frame)
	}
}

func TestExportSkeletonTwoBones(t *testing.T) {
	sc := twoBoneScene()
	path := filepath.Join(t.TempDir(), "out.skel")
	if err := ExportSkeleton(sc, path, defaultOpts()); err != nil {
		t.Fatalf("ExportSkeleton: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading asset: %v", err)
	}
	skel, err := formats.DecodeSkeleton(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding asset: %v", err)
	}

	if len(skel.Bones) != 2 {
		t.Fatalf("boneCount = %d, want 2", len(skel.Bones))
	}
	if skel.Bones[0].Parent != formats.RootParent {
		t.Errorf("root parent = %#x, want %#x", skel.Bones[0].Parent, formats.RootParent)
	}
	if skel.Bones[1].Parent != 0 {
		t.Errorf("child parent = %d, want 0", skel.Bones[1].Parent)
	}

	if len(skel.Animations) != 1 {
		t.Fatalf("animationCount = %d, want 1", len(skel.Animations))
	}
	a := skel.Animations[0]
	if a.Name != "walk" {
		t.Errorf("name = %q, want %q", a.Name, "walk")
	}
	if a.FrameCount != 10 {
		t.Errorf("frameCount = %d, want 10", a.FrameCount)
	}
	if len(a.Poses) != 20 {
		t.Errorf("pose stream length = %d, want 20", len(a.Poses))
	}

	// Child bone at frame 1 (pose index 1): translation follows the
	// sliding keyframes, relative to the identity root.
	child := a.Poses[1]
	if abs(child.Translation[0]-0.1) > 1e-5 || abs(child.Translation[2]-1) > 1e-5 {
		t.Errorf("child frame-1 translation = %v, want (0.1, 0, 1)", child.Translation)
	}
	if abs(child.Rotation[0]-1) > 1e-5 {
		t.Errorf("child rotation w = %v, want 1 (no rotation)", child.Rotation[0])
	}
	if abs(child.Scale[0]-1) > 1e-5 {
		t.Errorf("child scale = %v, want 1", child.Scale[0])
	}
}

func TestExportSkeletonRestoresSession(t *testing.T) {
	sc := twoBoneScene()
	prev := &scene.MemAction{ActName: "idle", Start: 0, End: 5}
	sc.State.Action = prev
	sc.State.Frame = 3
	sc.State.InPoseMode = false

	path := filepath.Join(t.TempDir(), "out.skel")
	if err := ExportSkeleton(sc, path, defaultOpts()); err != nil {
		t.Fatalf("ExportSkeleton: %v", err)
	}

	if sc.State.Action != scene.Action(prev) {
		t.Error("active action not restored")
	}
	if sc.State.Frame != 3 {
		t.Errorf("frame = %d, want 3", sc.State.Frame)
	}
	if sc.State.InPoseMode {
		t.Error("pose mode not restored")
	}
}

func TestExportSkeletonSingularRest(t *testing.T) {
	sc := twoBoneScene()
	sc.Arm.BoneList[1].Rest = math.Scale(0, 1, 1)

	err := ExportSkeleton(sc, filepath.Join(t.TempDir(), "out.skel"), defaultOpts())
	if !errors.Is(err, ErrSingularRest) {
		t.Errorf("err = %v, want ErrSingularRest", err)
	}
}

func TestExportSkeletonNegativeScale(t *testing.T) {
	sc := twoBoneScene()
	sc.State.PoseFn = func(bone, frame int, _ scene.Action) math.Mat4 {
		if bone == 0 {
			return math.Scale(-1, 1, 1)
		}
		return math.Identity()
	}

	err := ExportSkeleton(sc, filepath.Join(t.TempDir(), "out.skel"), defaultOpts())
	if !errors.Is(err, ErrNegativeScale) {
		t.Errorf("err = %v, want ErrNegativeScale", err)
	}
}

func TestExportMeshTextDump(t *testing.T) {
	sc := &scene.MemScene{
		Meshes: []*scene.MemMesh{{ObjName: "quad", World: math.Identity(), Snap: quadSnapshot()}},
	}
	opts := defaultOpts()
	opts.TextDump = true
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := ExportMesh(sc, path, opts); err != nil {
		t.Fatalf("ExportMesh: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading dump: %v", err)
	}
	if !bytes.Contains(data, []byte("false")) {
		t.Errorf("text dump %q missing boolean field", data)
	}
}
