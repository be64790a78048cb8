package render

// Projector maps world coordinates to screen pixels. ok is false for points
// behind the camera.
type Projector interface {
	Project(x, y, z float64) (sx, sy float64, ok bool)
}
