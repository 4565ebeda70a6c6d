package export

import (
	"fmt"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/formats"
	"github.com/muldin/assetpipe/pkg/math"
)

// sessionGuard captures the mutable evaluation state of the scene so it
// can be put back on every exit path. The frame is re-applied after a
// pose mode change to force the collaborator to re-evaluate.
type sessionGuard struct {
	sess   scene.Session
	mode   bool
	frame  int
	action scene.Action
}

func guardSession(sess scene.Session) *sessionGuard {
	return &sessionGuard{
		sess:   sess,
		mode:   sess.PoseMode(),
		frame:  sess.CurrentFrame(),
		action: sess.ActiveAction(),
	}
}

func (g *sessionGuard) setPoseMode(on bool) {
	g.sess.SetPoseMode(on)
	g.sess.SetFrame(g.sess.CurrentFrame())
}

func (g *sessionGuard) restore() {
	g.sess.SetActiveAction(g.action)
	g.sess.SetPoseMode(g.mode)
	g.sess.SetFrame(g.frame)
}

// sampleActions evaluates every action frame by frame and reads back the
// bones' world transforms, producing one densely sampled clip per
// action. A child bone's pose is expressed relative to its parent; root
// bones go through the remap so the clip lands in the same convention
// as the rest of the asset.
func sampleActions(sess scene.Session, arm scene.Armature, actions []scene.Action, remap math.Mat4) ([]formats.Animation, error) {
	bones := arm.Bones()
	anims := make([]formats.Animation, 0, len(actions))

	for _, act := range actions {
		sess.SetActiveAction(act)
		start, end := act.FrameRange()
		frameCount := end - start + 1

		a := formats.Animation{
			Name:       act.Name(),
			FrameCount: uint32(frameCount),
			Poses:      make([]formats.Pose, 0, frameCount*len(bones)),
		}

		for frame := start; frame <= end; frame++ {
			sess.SetFrame(frame)
			for i, b := range bones {
				world := sess.BoneWorld(i)

				var local math.Mat4
				if b.Parent >= 0 {
					parentInv, ok := sess.BoneWorld(b.Parent).Inverse()
					if !ok {
						return nil, fmt.Errorf("%w: action %q frame %d bone %q parent", ErrSingularPose, act.Name(), frame, b.Name)
					}
					local = parentInv.Mul(world)
				} else {
					local = remap.Mul(world)
				}

				if local.Determinant() < 0 {
					return nil, fmt.Errorf("%w: action %q frame %d bone %q", ErrNegativeScale, act.Name(), frame, b.Name)
				}
				t, r, s := local.Decompose()

				a.Poses = append(a.Poses, formats.Pose{
					Translation: t.Array(),
					Rotation:    [4]float32{r.W, r.X, r.Y, r.Z},
					Scale:       s.Array(),
				})
			}
		}
		anims = append(anims, a)
	}
	return anims, nil
}
