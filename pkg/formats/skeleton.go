package formats

import (
	"errors"
	"fmt"
	"io"
)

// RootParent marks a bone with no parent in the on-disk parent field.
// Bone index 0 is a valid parent, so the sentinel sits outside the
// bone-index range entirely.
const RootParent = 0xFF

// Skeleton format errors.
var (
	ErrTooManyBones     = errors.New("formats: bone count exceeds 255")
	ErrBadParent        = errors.New("formats: bone parent index out of range")
	ErrPoseStreamLength = errors.New("formats: animation pose count does not match frameCount*boneCount")
	ErrTruncatedSkel    = errors.New("formats: truncated skeleton data")
)

// Bone is one joint of the skeleton. InverseBind is the inverse bind
// matrix stored row-major, already in the destination axis convention.
type Bone struct {
	Parent      uint8
	InverseBind [16]float32
}

// Pose holds one bone's local transform for one frame. Rotation is a
// unit quaternion in w, x, y, z order.
type Pose struct {
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32
}

// Animation is a densely sampled clip. Poses is frame-major then
// bone-major: Poses[f*boneCount+b] is bone b at frame f.
type Animation struct {
	Name       string
	FrameCount uint32
	Poses      []Pose
}

// SkeletonAsset is the in-memory form of the skeleton container: the
// bone hierarchy with inverse bind matrices plus every exported clip.
type SkeletonAsset struct {
	Bones      []Bone
	Animations []Animation
}

// Validate checks bone capacity, parent indices and pose stream lengths
// before any byte is written.
func (s *SkeletonAsset) Validate() error {
	if len(s.Bones) > MaxBones {
		return fmt.Errorf("%w: %d bones", ErrTooManyBones, len(s.Bones))
	}
	for i, b := range s.Bones {
		if b.Parent != RootParent && int(b.Parent) >= len(s.Bones) {
			return fmt.Errorf("%w: bone %d parent %d, %d bones", ErrBadParent, i, b.Parent, len(s.Bones))
		}
	}
	for _, a := range s.Animations {
		want := int(a.FrameCount) * len(s.Bones)
		if len(a.Poses) != want {
			return fmt.Errorf("%w: %q has %d poses, want %d", ErrPoseStreamLength, a.Name, len(a.Poses), want)
		}
	}
	return nil
}

// Encode writes the container. Layout:
//
//	uint8   boneCount
//	boneCount x { uint8 parent, 16 x float32 inverse bind (row-major) }
//	uint32  animationCount
//	per animation:
//	  uint32 frameCount
//	  uint32 nameLen, nameLen bytes of name
//	  frameCount*boneCount x { 3 x f32 T, 4 x f32 quat (w,x,y,z), 3 x f32 S }
func (s *SkeletonAsset) Encode(w *Writer) error {
	if err := s.Validate(); err != nil {
		return err
	}

	w.Uint8(uint8(len(s.Bones)))
	for i := range s.Bones {
		b := &s.Bones[i]
		w.Uint8(b.Parent)
		for _, f := range b.InverseBind {
			w.Float32(f)
		}
	}

	w.Uint32(uint32(len(s.Animations)))
	for _, a := range s.Animations {
		w.Uint32(a.FrameCount)
		w.Uint32(uint32(len(a.Name)))
		w.String(a.Name)
		for i := range a.Poses {
			p := &a.Poses[i]
			w.Float32(p.Translation[0])
			w.Float32(p.Translation[1])
			w.Float32(p.Translation[2])
			w.Float32(p.Rotation[0])
			w.Float32(p.Rotation[1])
			w.Float32(p.Rotation[2])
			w.Float32(p.Rotation[3])
			w.Float32(p.Scale[0])
			w.Float32(p.Scale[1])
			w.Float32(p.Scale[2])
		}
	}

	return w.Err()
}

// DecodeSkeleton reads a binary skeleton container.
func DecodeSkeleton(rd io.Reader) (*SkeletonAsset, error) {
	r := NewReader(rd)

	s := &SkeletonAsset{}
	boneCount := int(r.Uint8())
	if r.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedSkel, r.Err())
	}

	s.Bones = make([]Bone, boneCount)
	for i := range s.Bones {
		b := &s.Bones[i]
		b.Parent = r.Uint8()
		for j := range b.InverseBind {
			b.InverseBind[j] = r.Float32()
		}
	}

	animCount := int(r.Uint32())
	if r.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedSkel, r.Err())
	}

	s.Animations = make([]Animation, 0, animCount)
	for i := 0; i < animCount; i++ {
		var a Animation
		a.FrameCount = r.Uint32()
		nameLen := int(r.Uint32())
		if r.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrTruncatedSkel, r.Err())
		}
		a.Name = r.String(nameLen)
		a.Poses = make([]Pose, int(a.FrameCount)*boneCount)
		for j := range a.Poses {
			p := &a.Poses[j]
			p.Translation = [3]float32{r.Float32(), r.Float32(), r.Float32()}
			p.Rotation = [4]float32{r.Float32(), r.Float32(), r.Float32(), r.Float32()}
			p.Scale = [3]float32{r.Float32(), r.Float32(), r.Float32()}
		}
		s.Animations = append(s.Animations, a)
	}

	if r.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedSkel, r.Err())
	}
	return s, nil
}
