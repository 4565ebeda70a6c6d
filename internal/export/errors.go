package export

import "errors"

// Validation and numeric errors surfaced by the pipeline entry points.
// Capacity errors come from pkg/formats; lookup failures on vertex-group
// names degrade to an unbound influence with a warning instead of an
// error.
var (
	ErrNoMeshSelected = errors.New("export: no mesh objects selected")
	ErrNoArmature     = errors.New("export: no armature selected")
	ErrDegenerateAxes = errors.New("export: forward and up axes are colinear")
	ErrSingularRest   = errors.New("export: bone rest matrix is not invertible")
	ErrSingularPose   = errors.New("export: bone pose matrix is not invertible")
	ErrNegativeScale  = errors.New("export: pose has negative or reflective scale")
)
