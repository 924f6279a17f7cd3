package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Up is the reference axis litter meshes are modelled around.
var Up = mgl64.Vec3{0, 1, 0}

// Pivot is a concrete Transform: position, rotation and uniform scale
// relative to the world origin.
type Pivot struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    float64
}

// NewPivot returns an identity pivot.
func NewPivot() *Pivot {
	return &Pivot{Rotation: mgl64.QuatIdent(), Scale: 1}
}

func (p *Pivot) WorldMatrix() mgl64.Mat4 {
	s := p.Scale
	if s == 0 {
		s = 1
	}
	return Compose(p.Position, p.Rotation, mgl64.Vec3{s, s, s})
}

func (p *Pivot) WorldRotation() mgl64.Quat {
	return p.Rotation
}

// SetYaw replaces the rotation with a rotation of angle radians about +Y.
func (p *Pivot) SetYaw(angle float64) {
	p.Rotation = mgl64.QuatRotate(angle, Up)
}

// Compose builds translation * rotation * scale.
func Compose(pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

// Decompose splits an affine matrix into translation, rotation and scale.
// A negative determinant flips the X scale, matching the usual TRS convention.
func Decompose(m mgl64.Mat4) (pos mgl64.Vec3, rot mgl64.Quat, scale mgl64.Vec3) {
	col0 := m.Col(0).Vec3()
	col1 := m.Col(1).Vec3()
	col2 := m.Col(2).Vec3()

	sx, sy, sz := col0.Len(), col1.Len(), col2.Len()
	if m.Det() < 0 {
		sx = -sx
	}
	pos = mgl64.Vec3{m[12], m[13], m[14]}
	scale = mgl64.Vec3{sx, sy, sz}

	if sx == 0 || sy == 0 || sz == 0 {
		return pos, mgl64.QuatIdent(), scale
	}

	r := mgl64.Ident4()
	r.SetCol(0, col0.Mul(1/sx).Vec4(0))
	r.SetCol(1, col1.Mul(1/sy).Vec4(0))
	r.SetCol(2, col2.Mul(1/sz).Vec4(0))
	rot = mgl64.Mat4ToQuat(r).Normalize()
	return pos, rot, scale
}

// TransformPoint applies m to a point (w = 1).
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// ToLocal re-expresses a world transform in the frame of parent.
func ToLocal(parent Transform, pos mgl64.Vec3, rot mgl64.Quat, scale float64) (mgl64.Vec3, mgl64.Quat, float64) {
	inv := parent.WorldMatrix().Inv()
	lp, lr, ls := Decompose(inv.Mul4(Compose(pos, rot, mgl64.Vec3{scale, scale, scale})))
	return lp, lr, ls[0]
}

// FromUnitVectors returns the shortest rotation taking from onto to.
func FromUnitVectors(from, to mgl64.Vec3) mgl64.Quat {
	return mgl64.QuatBetweenVectors(from, to)
}

// Slerp interpolates along the shorter arc.
func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// SafeNormalize normalizes v, or returns fallback when v is (nearly) zero.
func SafeNormalize(v, fallback mgl64.Vec3) mgl64.Vec3 {
	if v.LenSqr() < 1e-12 {
		return fallback
	}
	return v.Normalize()
}

// QuatFromComponents builds a quaternion from x, y, z, w order.
func QuatFromComponents(x, y, z, w float64) mgl64.Quat {
	return mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
}

// QuatLenSqr is the squared norm of q.
func QuatLenSqr(q mgl64.Quat) float64 {
	return q.W*q.W + q.V.LenSqr()
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Damp moves current towards target, frame-rate independent.
func Damp(current, target, lambda, dt float64) float64 {
	return current + (target-current)*(1-math.Exp(-lambda*dt))
}

// Smoothstep is the cubic ease t²(3−2t) of t clamped to [0,1].
func Smoothstep(t float64) float64 {
	t = Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}
