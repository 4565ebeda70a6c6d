package gltfscene

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func floatBits(data []float32) []byte {
	out := make([]byte, 0, len(data)*4)
	for _, f := range data {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], stdmath.Float32bits(f))
		out = append(out, b[:]...)
	}
	return out
}

func writeAccessor(doc *gltf.Document, data []float32, typ gltf.AccessorType, count int) uint32 {
	buf := doc.Buffers[0]
	offset := uint32(len(buf.Data))
	buf.Data = append(buf.Data, floatBits(data)...)
	buf.ByteLength = uint32(len(buf.Data))

	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: uint32(len(data) * 4),
	})
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    gltf.Index(uint32(len(doc.BufferViews) - 1)),
		ComponentType: gltf.ComponentFloat,
		Count:         uint32(count),
		Type:          typ,
	})
	return uint32(len(doc.Accessors) - 1)
}

// riggedQuad builds a quad skinned to a 2-joint chain, with one
// animation sliding the child joint over 0.375s (frames 0-9 at 24fps).
func riggedQuad(t *testing.T) *gltf.Document {
	t.Helper()
	doc := gltf.NewDocument()

	positions := modeler.WritePosition(doc, [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	})
	normals := modeler.WriteNormal(doc, [][3]float32{
		{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1},
	})
	uvs := modeler.WriteTextureCoord(doc, [][2]float32{
		{0, 0}, {1, 0}, {1, 1}, {0, 1},
	})
	joints := modeler.WriteJoints(doc, [][4]uint16{
		{0, 0, 0, 0}, {0, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0},
	})
	weights := modeler.WriteWeights(doc, [][4]float32{
		{1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0}, {1, 0, 0, 0},
	})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2, 0, 2, 3})

	doc.Meshes = []*gltf.Mesh{{
		Name: "quad",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]uint32{
				gltf.POSITION:   uint32(positions),
				gltf.NORMAL:     uint32(normals),
				gltf.TEXCOORD_0: uint32(uvs),
				gltf.JOINTS_0:   uint32(joints),
				gltf.WEIGHTS_0:  uint32(weights),
			},
			Indices: gltf.Index(uint32(indices)),
		}},
	}}

	doc.Nodes = []*gltf.Node{
		{Name: "quad", Mesh: gltf.Index(0), Skin: gltf.Index(0)},
		{Name: "root", Children: []uint32{2}},
		{Name: "child", Translation: [3]float32{0, 1, 0}},
	}
	doc.Scenes[0].Nodes = []uint32{0, 1}
	doc.Skins = []*gltf.Skin{{Name: "rig", Joints: []uint32{1, 2}}}

	times := writeAccessor(doc, []float32{0, 0.375}, gltf.AccessorScalar, 2)
	slide := writeAccessor(doc, []float32{0, 1, 0, 1, 1, 0}, gltf.AccessorVec3, 2)
	doc.Animations = []*gltf.Animation{{
		Name: "slide",
		Channels: []*gltf.Channel{{
			Sampler: gltf.Index(0),
			Target:  gltf.ChannelTarget{Node: gltf.Index(2), Path: gltf.TRSTranslation},
		}},
		Samplers: []*gltf.AnimationSampler{{
			Input:  gltf.Index(times),
			Output: gltf.Index(slide),
		}},
	}}

	return doc
}

func TestSceneStructure(t *testing.T) {
	sc, err := NewFromDocument(riggedQuad(t), 24)
	if err != nil {
		t.Fatalf("NewFromDocument: %v", err)
	}

	meshes := sc.SelectedMeshObjects()
	if len(meshes) != 1 {
		t.Fatalf("mesh count = %d, want 1", len(meshes))
	}
	if meshes[0].Name() != "quad" {
		t.Errorf("mesh name = %q, want quad", meshes[0].Name())
	}

	snap, err := meshes[0].Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(snap.Triangles) != 2 {
		t.Errorf("triangle count = %d, want 2", len(snap.Triangles))
	}
	if len(snap.Positions) != 4 {
		t.Errorf("position count = %d, want 4", len(snap.Positions))
	}

	groups := meshes[0].VertexGroups()
	if len(groups) != 2 || groups[0] != "root" || groups[1] != "child" {
		t.Errorf("vertex groups = %v, want [root child]", groups)
	}

	// Vertex 2 is bound fully to joint slot 1 (the child bone).
	w := snap.Weights[2]
	if len(w) != 1 || w[0].Group != 1 || w[0].Weight != 1 {
		t.Errorf("vertex 2 weights = %v, want one full influence on group 1", w)
	}
}

func TestArmatureHierarchy(t *testing.T) {
	sc, err := NewFromDocument(riggedQuad(t), 24)
	if err != nil {
		t.Fatalf("NewFromDocument: %v", err)
	}

	arm := sc.SelectedArmature()
	if arm == nil {
		t.Fatal("no armature for skinned document")
	}
	bones := arm.Bones()
	if len(bones) != 2 {
		t.Fatalf("bone count = %d, want 2", len(bones))
	}
	if bones[0].Name != "root" || bones[0].Parent != -1 {
		t.Errorf("bone 0 = %q parent %d, want root / -1", bones[0].Name, bones[0].Parent)
	}
	if bones[1].Name != "child" || bones[1].Parent != 0 {
		t.Errorf("bone 1 = %q parent %d, want child / 0", bones[1].Name, bones[1].Parent)
	}
	if arm.BoneIndex("child") != 1 || arm.BoneIndex("missing") != -1 {
		t.Error("BoneIndex lookup broken")
	}

	// Child rest world carries the joint's translation.
	if ty := bones[1].Rest[13]; absf(ty-1) > 1e-6 {
		t.Errorf("child rest translation y = %v, want 1", ty)
	}
}

func TestActionFrameRange(t *testing.T) {
	sc, err := NewFromDocument(riggedQuad(t), 24)
	if err != nil {
		t.Fatalf("NewFromDocument: %v", err)
	}

	actions := sc.Actions()
	if len(actions) != 1 {
		t.Fatalf("action count = %d, want 1", len(actions))
	}
	if actions[0].Name() != "slide" {
		t.Errorf("action name = %q, want slide", actions[0].Name())
	}
	start, end := actions[0].FrameRange()
	if start != 0 || end != 9 {
		t.Errorf("frame range = %d..%d, want 0..9", start, end)
	}
}

func TestSessionPoseEvaluation(t *testing.T) {
	sc, err := NewFromDocument(riggedQuad(t), 24)
	if err != nil {
		t.Fatalf("NewFromDocument: %v", err)
	}
	sess := sc.Session()

	// Rest pose: child sits at its authored translation.
	world := sess.BoneWorld(1)
	if absf(world[12]) > 1e-5 || absf(world[13]-1) > 1e-5 {
		t.Errorf("rest child world translation = (%v, %v), want (0, 1)", world[12], world[13])
	}

	sess.SetPoseMode(true)
	sess.SetActiveAction(sc.Actions()[0])

	sess.SetFrame(0)
	world = sess.BoneWorld(1)
	if absf(world[12]) > 1e-5 {
		t.Errorf("frame 0 child x = %v, want 0", world[12])
	}

	sess.SetFrame(9)
	world = sess.BoneWorld(1)
	if absf(world[12]-1) > 1e-5 {
		t.Errorf("frame 9 child x = %v, want 1", world[12])
	}

	// Halfway through the keyed span the translation interpolates.
	sess.SetFrame(4)
	world = sess.BoneWorld(1)
	if world[12] <= 0.3 || world[12] >= 0.6 {
		t.Errorf("frame 4 child x = %v, want an interpolated value near 0.44", world[12])
	}
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
