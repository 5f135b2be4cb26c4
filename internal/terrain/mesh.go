package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	castEpsilon  = 1e-9
	castHeadroom = 1.0
)

// Mesh is a square triangulated grid centred on the origin, sampled from a
// field. It is the geometry a renderer would draw, so a ray cast against it
// yields the height the player actually sees.
type Mesh struct {
	size     float64
	segments int
	step     float64
	heights  []float64
	top      float64
}

func NewMesh(field HeightField, size float64, segments int) *Mesh {
	if segments < 1 {
		segments = 1
	}
	if size <= 0 {
		size = 1
	}
	m := &Mesh{
		size:     size,
		segments: segments,
		step:     size / float64(segments),
		heights:  make([]float64, (segments+1)*(segments+1)),
		top:      math.Inf(-1),
	}
	half := size / 2
	for j := 0; j <= segments; j++ {
		for i := 0; i <= segments; i++ {
			h := HeightAt(field, -half+float64(i)*m.step, -half+float64(j)*m.step)
			m.heights[j*(segments+1)+i] = h
			if h > m.top {
				m.top = h
			}
		}
	}
	return m
}

func (m *Mesh) Size() float64 { return m.size }

func (m *Mesh) Segments() int { return m.segments }

// Vertex returns grid vertex (i, j), with i along x and j along z.
func (m *Mesh) Vertex(i, j int) mgl64.Vec3 {
	half := m.size / 2
	return mgl64.Vec3{
		-half + float64(i)*m.step,
		m.heights[j*(m.segments+1)+i],
		-half + float64(j)*m.step,
	}
}

// Samples returns every vertex row by row, z-major, for the render side.
func (m *Mesh) Samples() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(m.heights))
	for j := 0; j <= m.segments; j++ {
		for i := 0; i <= m.segments; i++ {
			out = append(out, m.Vertex(i, j))
		}
	}
	return out
}

// CastDown intersects a ray pointing straight down from above (x, z) with the
// two triangles of the covering cell.
func (m *Mesh) CastDown(x, z float64) (float64, bool) {
	half := m.size / 2
	if x < -half || x > half || z < -half || z > half {
		return 0, false
	}
	i := int(math.Floor((x + half) / m.step))
	j := int(math.Floor((z + half) / m.step))
	if i >= m.segments {
		i = m.segments - 1
	}
	if j >= m.segments {
		j = m.segments - 1
	}

	origin := mgl64.Vec3{x, m.top + castHeadroom, z}
	down := mgl64.Vec3{0, -1, 0}

	v00 := m.Vertex(i, j)
	v10 := m.Vertex(i+1, j)
	v01 := m.Vertex(i, j+1)
	v11 := m.Vertex(i+1, j+1)

	if dist, ok := rayTriangle(origin, down, v00, v10, v01); ok {
		return origin.Y() - dist, true
	}
	if dist, ok := rayTriangle(origin, down, v10, v11, v01); ok {
		return origin.Y() - dist, true
	}
	return 0, false
}

// rayTriangle is the Möller–Trumbore test; it returns the distance along dir.
func rayTriangle(origin, dir, v0, v1, v2 mgl64.Vec3) (float64, bool) {
	e1 := v1.Sub(v0)
	e2 := v2.Sub(v0)
	p := dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < castEpsilon {
		return 0, false
	}
	inv := 1 / det
	t := origin.Sub(v0)
	u := t.Dot(p) * inv
	if u < -castEpsilon || u > 1+castEpsilon {
		return 0, false
	}
	q := t.Cross(e1)
	v := dir.Dot(q) * inv
	if v < -castEpsilon || u+v > 1+castEpsilon {
		return 0, false
	}
	dist := e2.Dot(q) * inv
	if dist < 0 {
		return 0, false
	}
	return dist, true
}
