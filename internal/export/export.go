// Package export implements the asset baking pipeline: axis remapping,
// geometry baking with vertex deduplication and skin-weight
// normalization, skeleton encoding with inverse bind poses, and dense
// per-frame animation sampling. Assets are encoded fully in memory and
// written with a single file write, so an encode failure never leaves a
// partial file behind.
package export

import (
	"bytes"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/muldin/assetpipe/internal/scene"
	"github.com/muldin/assetpipe/pkg/formats"
)

// Options configures one export pass.
type Options struct {
	// Forward and Up select the target coordinate convention.
	Forward Axis
	Up      Axis

	// SortWeights orders skin influences by descending weight before
	// the cut to four, instead of keeping group enumeration order.
	SortWeights bool

	// TextDump switches the container to the whitespace-separated
	// decimal debug encoding instead of the binary layout.
	TextDump bool

	Logger *zap.Logger
}

func (o *Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Options) newWriter(buf *bytes.Buffer) *formats.Writer {
	if o.TextDump {
		return formats.NewTextWriter(buf)
	}
	return formats.NewWriter(buf)
}

// ExportMesh bakes the selected mesh objects into a mesh asset at path.
// The armature, when present, is forced into rest position for the
// duration of the bake so the current pose is not burned into the
// vertices.
func ExportMesh(sc scene.Scene, path string, opts Options) error {
	log := opts.logger()

	objects := sc.SelectedMeshObjects()
	if len(objects) == 0 {
		return ErrNoMeshSelected
	}
	remap, err := AxisConfig{Forward: opts.Forward, Up: opts.Up}.Matrix()
	if err != nil {
		return err
	}

	arm := sc.SelectedArmature()
	if arm != nil {
		guard := guardSession(sc.Session())
		guard.setPoseMode(false)
		defer guard.restore()
	}

	mesh, err := bakeMeshes(objects, arm, remap, opts.SortWeights, log)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := mesh.Encode(opts.newWriter(&buf)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("export: writing mesh asset: %w", err)
	}

	log.Info("mesh asset written",
		zap.String("path", path),
		zap.Int("faces", len(mesh.Faces)),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Bool("skinned", mesh.HasSkeleton))
	return nil
}

// ExportSkeleton encodes the selected armature and every action in the
// scene into a skeleton+animation asset at path. Scene session state
// touched during sampling is restored on all exit paths.
func ExportSkeleton(sc scene.Scene, path string, opts Options) error {
	log := opts.logger()

	arm := sc.SelectedArmature()
	if arm == nil {
		return ErrNoArmature
	}
	remap, err := AxisConfig{Forward: opts.Forward, Up: opts.Up}.Matrix()
	if err != nil {
		return err
	}

	bones, err := encodeBones(arm, remap)
	if err != nil {
		return err
	}

	guard := guardSession(sc.Session())
	guard.setPoseMode(true)
	defer guard.restore()

	anims, err := sampleActions(sc.Session(), arm, sc.Actions(), remap)
	if err != nil {
		return err
	}

	skel := &formats.SkeletonAsset{Bones: bones, Animations: anims}
	var buf bytes.Buffer
	if err := skel.Encode(opts.newWriter(&buf)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("export: writing skeleton asset: %w", err)
	}

	log.Info("skeleton asset written",
		zap.String("path", path),
		zap.Int("bones", len(bones)),
		zap.Int("animations", len(anims)))
	return nil
}
