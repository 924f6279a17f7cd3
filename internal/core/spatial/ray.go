package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line; Dir is kept normalized by NewRay.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

func NewRay(origin, dir mgl64.Vec3) Ray {
	return Ray{Origin: origin, Dir: SafeNormalize(dir, mgl64.Vec3{0, 0, -1})}
}

// At returns Origin + Dir*t.
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectSphere returns the nearest non-negative hit distance.
func (r Ray) IntersectSphere(center mgl64.Vec3, radius float64) (float64, bool) {
	if radius <= 0 {
		return 0, false
	}
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Dir)
	c := oc.LenSqr() - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Sphere is an analytic Surface around Center. It stands in
// for the planet mesh when no collision geometry is available.
type Sphere struct {
	Radius float64
	Center mgl64.Vec3
}

func (s Sphere) Raycast(ray Ray) (Hit, bool) {
	t, ok := ray.IntersectSphere(s.Center, s.Radius)
	if !ok {
		return Hit{}, false
	}
	p := ray.At(t)
	return Hit{
		Point:    p,
		Normal:   SafeNormalize(p.Sub(s.Center), Up),
		Distance: t,
	}, true
}

// RandomUnitVector draws a direction uniformly on the unit sphere from two
// uniform samples u ∈ [-1,1] and theta ∈ [0,2π).
func RandomUnitVector(u, theta float64) mgl64.Vec3 {
	phi := math.Acos(Clamp(u, -1, 1))
	return mgl64.Vec3{
		math.Sin(phi) * math.Cos(theta),
		math.Cos(phi),
		math.Sin(phi) * math.Sin(theta),
	}
}
