package components

// Collision marks a sharp direction change detected while the pool is
// driven by an external predictor. Only rendering and diagnostics read it.
type Collision struct {
	Hit bool
}
