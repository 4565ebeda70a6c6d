package formats

import (
	"errors"
	"fmt"
	"io"
)

// Limits imposed by the fixed field widths of the containers.
const (
	MaxFaces    = 65535 // face count is a uint16
	MaxVertices = 65535 // vertex indices and count are uint16
	MaxBones    = 255   // bone count is a uint8, parent 0xFF is reserved
)

// Mesh format errors.
var (
	ErrTooManyFaces    = errors.New("formats: face count exceeds 65535")
	ErrTooManyVertices = errors.New("formats: vertex count exceeds 65535")
	ErrIndexOutOfRange = errors.New("formats: face references vertex beyond vertex count")
	ErrTruncatedMesh   = errors.New("formats: truncated mesh data")
)

// Vertex is one deduplicated vertex record. The UV is stored with the V
// component already flipped (v' = 1 - v) so the texture origin matches
// the runtime convention. JointWeights sum to 1 within float tolerance,
// or are all zero together with all-zero JointIndices for vertices with
// no skin influence at all.
//
// Vertex is a comparable value: the dedup pass uses the whole record as
// a map key, so equality and hashing cover every field.
type Vertex struct {
	Position     [3]float32
	UV           [2]float32
	Normal       [3]float32
	JointIndices [4]uint8
	JointWeights [4]float32
}

// MeshAsset is the in-memory form of the mesh container: an indexed
// triangle list over deduplicated vertices. Skin fields are present on
// disk only when HasSkeleton is set.
type MeshAsset struct {
	HasSkeleton bool
	Faces       [][3]uint16
	Vertices    []Vertex
}

// Validate checks the capacity limits and index ranges before any byte
// is written.
func (m *MeshAsset) Validate() error {
	if len(m.Faces) > MaxFaces {
		return fmt.Errorf("%w: %d faces", ErrTooManyFaces, len(m.Faces))
	}
	if len(m.Vertices) > MaxVertices {
		return fmt.Errorf("%w: %d vertices", ErrTooManyVertices, len(m.Vertices))
	}
	for i, f := range m.Faces {
		for _, idx := range f {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d index %d, %d vertices", ErrIndexOutOfRange, i, idx, len(m.Vertices))
			}
		}
	}
	return nil
}

// Encode writes the container. Layout:
//
//	bool    hasSkeleton
//	uint16  faceCount
//	uint16  vertexCount
//	faceCount*3 x uint16 vertex indices
//	vertexCount x vertex record (skin fields iff hasSkeleton)
func (m *MeshAsset) Encode(w *Writer) error {
	if err := m.Validate(); err != nil {
		return err
	}

	w.Bool(m.HasSkeleton)
	w.Uint16(uint16(len(m.Faces)))
	w.Uint16(uint16(len(m.Vertices)))

	for _, f := range m.Faces {
		w.Uint16(f[0])
		w.Uint16(f[1])
		w.Uint16(f[2])
	}

	for i := range m.Vertices {
		v := &m.Vertices[i]
		w.Float32(v.Position[0])
		w.Float32(v.Position[1])
		w.Float32(v.Position[2])
		w.Float32(v.UV[0])
		w.Float32(v.UV[1])
		w.Float32(v.Normal[0])
		w.Float32(v.Normal[1])
		w.Float32(v.Normal[2])
		if m.HasSkeleton {
			for _, j := range v.JointIndices {
				w.Uint8(j)
			}
			for _, jw := range v.JointWeights {
				w.Float32(jw)
			}
		}
	}

	return w.Err()
}

// DecodeMesh reads a binary mesh container.
func DecodeMesh(rd io.Reader) (*MeshAsset, error) {
	r := NewReader(rd)

	m := &MeshAsset{}
	m.HasSkeleton = r.Bool()
	faceCount := int(r.Uint16())
	vertexCount := int(r.Uint16())
	if r.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedMesh, r.Err())
	}

	m.Faces = make([][3]uint16, faceCount)
	for i := range m.Faces {
		m.Faces[i] = [3]uint16{r.Uint16(), r.Uint16(), r.Uint16()}
	}

	m.Vertices = make([]Vertex, vertexCount)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = [3]float32{r.Float32(), r.Float32(), r.Float32()}
		v.UV = [2]float32{r.Float32(), r.Float32()}
		v.Normal = [3]float32{r.Float32(), r.Float32(), r.Float32()}
		if m.HasSkeleton {
			for j := range v.JointIndices {
				v.JointIndices[j] = r.Uint8()
			}
			for j := range v.JointWeights {
				v.JointWeights[j] = r.Float32()
			}
		}
	}

	if r.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedMesh, r.Err())
	}
	return m, nil
}
