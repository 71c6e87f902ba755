package display

import (
	"math"

	"reflow/pkg/geom"
	"reflow/pkg/styled"
)

// Matrix is a 4x4 column-major transform matrix, the form the compositor
// consumes. The software pipeline only ever inspects the 2D affine part.
type Matrix [16]float64

// Identity is the no-op transform.
var Identity = Matrix{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// IsIdentity reports an identity matrix.
func (m Matrix) IsIdentity() bool { return m == Identity }

// Mul returns m * o (o applied first).
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * o[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// Apply maps a point through the matrix's 2D affine part.
func (m Matrix) Apply(p geom.Point) geom.Point {
	return geom.Point{
		X: m[0]*p.X + m[4]*p.Y + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[13],
	}
}

// Invert2D inverts the 2D affine part. Singular matrices (scale 0) return
// ok=false; hit testing treats such content as unreachable.
func (m Matrix) Invert2D() (Matrix, bool) {
	a, b, c, d := m[0], m[1], m[4], m[5]
	tx, ty := m[12], m[13]
	det := a*d - b*c
	if det == 0 {
		return Identity, false
	}
	inv := Identity
	inv[0] = d / det
	inv[1] = -b / det
	inv[4] = -c / det
	inv[5] = a / det
	inv[12] = (c*ty - d*tx) / det
	inv[13] = (b*tx - a*ty) / det
	return inv, true
}

func translation(x, y float64) Matrix {
	m := Identity
	m[12] = x
	m[13] = y
	return m
}

func scaling(x, y float64) Matrix {
	m := Identity
	m[0] = x
	m[5] = y
	return m
}

func rotation(deg float64) Matrix {
	rad := deg * math.Pi / 180
	s, c := math.Sin(rad), math.Cos(rad)
	m := Identity
	m[0] = c
	m[1] = s
	m[4] = -s
	m[5] = c
	return m
}

func skewing(xDeg, yDeg float64) Matrix {
	m := Identity
	m[4] = math.Tan(xDeg * math.Pi / 180)
	m[1] = math.Tan(yDeg * math.Pi / 180)
	return m
}

// resolveTransform folds a transform list and its origin into one matrix.
// Percentage translations and the origin resolve against the border box.
func resolveTransform(st *styled.ComputedStyle, box geom.Rect) Matrix {
	if len(st.Transform) == 0 {
		return Identity
	}
	ox := box.X + st.TransformOriginX.Resolve(box.Width, st.FontSize)
	oy := box.Y + st.TransformOriginY.Resolve(box.Height, st.FontSize)

	m := translation(ox, oy)
	for _, op := range st.Transform {
		switch op.Kind {
		case styled.TransformTranslate:
			m = m.Mul(translation(
				op.X.Resolve(box.Width, st.FontSize),
				op.Y.Resolve(box.Height, st.FontSize),
			))
		case styled.TransformScale:
			m = m.Mul(scaling(op.FloatA, op.FloatB))
		case styled.TransformRotate:
			m = m.Mul(rotation(op.FloatA))
		case styled.TransformSkew:
			m = m.Mul(skewing(op.FloatA, op.FloatB))
		case styled.TransformMatrix3D:
			m = m.Mul(Matrix(op.Matrix))
		case styled.TransformPerspective:
			p := Identity
			if op.FloatA > 0 {
				p[11] = -1 / op.FloatA
			}
			m = m.Mul(p)
		}
	}
	return m.Mul(translation(-ox, -oy))
}
