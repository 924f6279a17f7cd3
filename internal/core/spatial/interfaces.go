package spatial

import "github.com/go-gl/mathgl/mgl64"

// Transform is a node of a scene hierarchy whose world matrix may change
// between frames (the rotating planet, for instance).
type Transform interface {
	WorldMatrix() mgl64.Mat4
	WorldRotation() mgl64.Quat
}

// Surface answers "where does this ray first hit the display surface".
type Surface interface {
	Raycast(ray Ray) (Hit, bool)
}

// Hit is a world-space intersection with a surface.
type Hit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
}
