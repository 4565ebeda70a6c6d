package gltfscene

import (
	"fmt"
	stdmath "math"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/math"
)

// track holds one channel's keyframes. Exactly one of vecs and quats is
// set, depending on the targeted property.
type track struct {
	times []float32
	vecs  [][3]float32
	quats [][4]float32
}

// segment locates t between two keyframes and returns their indices
// with the interpolation factor, clamping outside the keyed range.
func (tr *track) segment(t float32) (int, int, float32) {
	n := len(tr.times)
	if n == 0 || t <= tr.times[0] {
		return 0, 0, 0
	}
	if t >= tr.times[n-1] {
		return n - 1, n - 1, 0
	}
	i := 0
	for i+1 < n && tr.times[i+1] < t {
		i++
	}
	span := tr.times[i+1] - tr.times[i]
	if span <= 0 {
		return i, i, 0
	}
	return i, i + 1, (t - tr.times[i]) / span
}

func (tr *track) vecAt(t float32) math.Vec3 {
	i, j, f := tr.segment(t)
	a := math.Vec3{X: tr.vecs[i][0], Y: tr.vecs[i][1], Z: tr.vecs[i][2]}
	b := math.Vec3{X: tr.vecs[j][0], Y: tr.vecs[j][1], Z: tr.vecs[j][2]}
	return a.Lerp(b, f)
}

func (tr *track) quatAt(t float32) math.Quat {
	i, j, f := tr.segment(t)
	a := math.Quat{X: tr.quats[i][0], Y: tr.quats[i][1], Z: tr.quats[i][2], W: tr.quats[i][3]}
	b := math.Quat{X: tr.quats[j][0], Y: tr.quats[j][1], Z: tr.quats[j][2], W: tr.quats[j][3]}
	return a.Slerp(b, f).Normalize()
}

// nodeTracks groups the animated properties of one node.
type nodeTracks struct {
	translation *track
	rotation    *track
	scale       *track
}

// action is one glTF animation, its keyframe range mapped to integer
// frames at the scene's sampling rate.
type action struct {
	name       string
	start, end int
	tracks     map[int]*nodeTracks
}

func newAction(doc *gltf.Document, anim *gltf.Animation, fps float64) (*action, error) {
	a := &action{
		name:   anim.Name,
		tracks: make(map[int]*nodeTracks),
	}

	minT := float32(stdmath.Inf(1))
	maxT := float32(stdmath.Inf(-1))

	for ci, ch := range anim.Channels {
		if ch.Sampler == nil || ch.Target.Node == nil {
			continue
		}
		sampler := anim.Samplers[*ch.Sampler]
		if sampler.Input == nil || sampler.Output == nil {
			continue
		}

		times, err := readTimes(doc, doc.Accessors[*sampler.Input])
		if err != nil {
			return nil, fmt.Errorf("gltfscene: animation %q channel %d: %w", anim.Name, ci, err)
		}
		if len(times) == 0 {
			continue
		}
		if times[0] < minT {
			minT = times[0]
		}
		if last := times[len(times)-1]; last > maxT {
			maxT = last
		}

		ni := int(*ch.Target.Node)
		nt := a.tracks[ni]
		if nt == nil {
			nt = &nodeTracks{}
			a.tracks[ni] = nt
		}

		out, err := modeler.ReadAccessor(doc, doc.Accessors[*sampler.Output], nil)
		if err != nil {
			return nil, fmt.Errorf("gltfscene: animation %q channel %d: %w", anim.Name, ci, err)
		}

		switch ch.Target.Path {
		case gltf.TRSTranslation, gltf.TRSScale:
			vecs, ok := out.([][3]float32)
			if !ok {
				return nil, fmt.Errorf("gltfscene: animation %q channel %d: unexpected output type %T", anim.Name, ci, out)
			}
			tr := &track{times: times, vecs: vecs}
			if ch.Target.Path == gltf.TRSTranslation {
				nt.translation = tr
			} else {
				nt.scale = tr
			}
		case gltf.TRSRotation:
			quats, ok := out.([][4]float32)
			if !ok {
				return nil, fmt.Errorf("gltfscene: animation %q channel %d: unexpected output type %T", anim.Name, ci, out)
			}
			nt.rotation = &track{times: times, quats: quats}
		default:
			// morph target weights are not part of the pose stream
		}
	}

	if len(a.tracks) == 0 {
		return nil, fmt.Errorf("gltfscene: animation %q has no node channels", anim.Name)
	}

	a.start = int(stdmath.Round(float64(minT) * fps))
	a.end = int(stdmath.Round(float64(maxT) * fps))
	if a.end < a.start {
		a.end = a.start
	}
	return a, nil
}

func readTimes(doc *gltf.Document, acc *gltf.Accessor) ([]float32, error) {
	raw, err := modeler.ReadAccessor(doc, acc, nil)
	if err != nil {
		return nil, err
	}
	times, ok := raw.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected keyframe time type %T", raw)
	}
	return times, nil
}

func (a *action) Name() string { return a.name }

func (a *action) FrameRange() (int, int) { return a.start, a.end }

// session evaluates node world transforms for the exporter. It is a
// pure function of (pose mode, frame, active action), so the setters
// only record state; matrices are computed on demand in BoneWorld.
type session struct {
	doc     *gltf.Document
	arm     *armature
	parents []int
	fps     float64

	poseMode bool
	frame    int
	action   scene.Action
}

func (s *session) PoseMode() bool { return s.poseMode }

func (s *session) SetPoseMode(on bool) { s.poseMode = on }

func (s *session) CurrentFrame() int { return s.frame }

func (s *session) SetFrame(frame int) { s.frame = frame }

func (s *session) ActiveAction() scene.Action { return s.action }

func (s *session) SetActiveAction(a scene.Action) { s.action = a }

func (s *session) BoneWorld(i int) math.Mat4 {
	var act *action
	if s.poseMode {
		act, _ = s.action.(*action)
	}
	t := float32(float64(s.frame) / s.fps)

	world := math.Identity()
	var chain []int
	for ni := s.arm.nodeIdx[i]; ni >= 0; ni = s.parents[ni] {
		chain = append(chain, ni)
	}
	for j := len(chain) - 1; j >= 0; j-- {
		world = world.Mul(s.localAt(chain[j], act, t))
	}
	return world
}

// localAt is a node's local transform at time t: animated properties
// from the action's tracks, the rest pose for everything else.
func (s *session) localAt(ni int, act *action, t float32) math.Mat4 {
	node := s.doc.Nodes[ni]
	if act == nil {
		return localMatrix(node)
	}
	nt, ok := act.tracks[ni]
	if !ok {
		return localMatrix(node)
	}

	tr := nodeTranslation(node)
	rot := nodeRotation(node)
	scl := nodeScale(node)
	if nt.translation != nil {
		tr = nt.translation.vecAt(t)
	}
	if nt.rotation != nil {
		rot = nt.rotation.quatAt(t)
	}
	if nt.scale != nil {
		scl = nt.scale.vecAt(t)
	}
	return math.Compose(tr, rot, scl)
}
