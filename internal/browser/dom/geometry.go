package dom

import "sync"

// Geometry is the absolute, window-relative box computed by layout.
type Geometry struct {
	X      float32 `json:"x"`
	Y      float32 `json:"y"`
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

// Contains reports whether the point lies inside the box, edges included.
func (g Geometry) Contains(px, py float32) bool {
	return g.X <= px && px <= g.X+g.Width && g.Y <= py && py <= g.Y+g.Height
}

// GeometryRecord is the shared computed geometry of a node. Only the layout
// resolver writes it.
type GeometryRecord struct {
	mu sync.RWMutex
	g  Geometry
}

func (r *GeometryRecord) Get() Geometry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.g
}

func (r *GeometryRecord) Set(g Geometry) {
	r.mu.Lock()
	r.g = g
	r.mu.Unlock()
}
