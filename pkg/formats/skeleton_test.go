package formats

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func identity16() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

func sampleSkeleton() *SkeletonAsset {
	restPose := func(tx float32) Pose {
		return Pose{
			Translation: [3]float32{tx, 0, 0},
			Rotation:    [4]float32{1, 0, 0, 0},
			Scale:       [3]float32{1, 1, 1},
		}
	}
	return &SkeletonAsset{
		Bones: []Bone{
			{Parent: RootParent, InverseBind: identity16()},
			{Parent: 0, InverseBind: identity16()},
		},
		Animations: []Animation{
			{
				Name:       "walk",
				FrameCount: 2,
				Poses:      []Pose{restPose(0), restPose(1), restPose(0.5), restPose(1.5)},
			},
		},
	}
}

func TestSkeletonRoundTrip(t *testing.T) {
	s := sampleSkeleton()
	var buf bytes.Buffer
	if err := s.Encode(NewWriter(&buf)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSkeleton(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("round trip mismatch\n got %+v\nwant %+v", got, s)
	}
}

func TestSkeletonHeaderLayout(t *testing.T) {
	s := sampleSkeleton()
	var buf bytes.Buffer
	if err := s.Encode(NewWriter(&buf)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	b := buf.Bytes()
	if b[0] != 2 {
		t.Errorf("boneCount = %d, want 2", b[0])
	}
	if b[1] != RootParent {
		t.Errorf("root parent byte = %#x, want %#x", b[1], RootParent)
	}
	// second bone's parent follows the first bone's 16 matrix floats
	if off := 2 + 16*4; b[off] != 0 {
		t.Errorf("second parent byte = %d, want 0", b[off])
	}
	boneBlock := 1 + 2*(1+16*4)
	animHeader := 4 + 4 + 4 + len("walk")
	poseBlock := 4 * 10 * 4
	if want := boneBlock + animHeader + poseBlock; len(b) != want {
		t.Errorf("encoded size = %d, want %d", len(b), want)
	}
}

func TestSkeletonValidateParent(t *testing.T) {
	s := sampleSkeleton()
	s.Bones[1].Parent = 7
	err := s.Encode(NewWriter(&bytes.Buffer{}))
	if !errors.Is(err, ErrBadParent) {
		t.Errorf("err = %v, want ErrBadParent", err)
	}
}

func TestSkeletonValidatePoseStream(t *testing.T) {
	s := sampleSkeleton()
	s.Animations[0].Poses = s.Animations[0].Poses[:3]
	err := s.Encode(NewWriter(&bytes.Buffer{}))
	if !errors.Is(err, ErrPoseStreamLength) {
		t.Errorf("err = %v, want ErrPoseStreamLength", err)
	}
}

func TestSkeletonValidateBoneCount(t *testing.T) {
	s := &SkeletonAsset{Bones: make([]Bone, MaxBones+1)}
	err := s.Encode(NewWriter(&bytes.Buffer{}))
	if !errors.Is(err, ErrTooManyBones) {
		t.Errorf("err = %v, want ErrTooManyBones", err)
	}
}

func TestDecodeSkeletonTruncated(t *testing.T) {
	s := sampleSkeleton()
	var buf bytes.Buffer
	if err := s.Encode(NewWriter(&buf)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err := DecodeSkeleton(bytes.NewReader(buf.Bytes()[:10]))
	if !errors.Is(err, ErrTruncatedSkel) {
		t.Errorf("err = %v, want ErrTruncatedSkel", err)
	}
}

func TestSkeletonNoAnimations(t *testing.T) {
	s := &SkeletonAsset{
		Bones: []Bone{{Parent: RootParent, InverseBind: identity16()}},
	}
	var buf bytes.Buffer
	if err := s.Encode(NewWriter(&buf)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSkeleton(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Animations) != 0 {
		t.Errorf("got %d animations, want 0", len(got.Animations))
	}
}
