package world

import "github.com/zeusync/tankclient/internal/core/models"

// RecomputeVisibility sets every non-player entity visible iff it lies
// within radius of center, boundary included. Players are never hidden.
func (w *Engine) RecomputeVisibility(center *models.Entity, radius float64) {
	for _, e := range w.entities {
		if e.IsPlayer() {
			continue
		}
		w.setVisible(e, e.DistanceTo(center) <= radius)
	}
}

// RevealAll makes every entity visible.
func (w *Engine) RevealAll() {
	for _, e := range w.entities {
		w.setVisible(e, true)
	}
}

// setVisible forwards actual changes to the renderer; repeating the same
// value is a no-op.
func (w *Engine) setVisible(e *models.Entity, visible bool) {
	if e.SetVisible(visible) {
		w.renderer.VisibilityChanged(e, visible)
	}
}

// visionCenter returns the entity whose vision drives partial observability.
// There is none outside real-time mode or after the controlled tank died.
func (w *Engine) visionCenter() (*models.Entity, bool) {
	if w.mode != ModeRealTime || w.controlled == nil || w.revealed {
		return nil, false
	}
	return w.controlled, true
}

// initialVisibility decides whether a freshly created non-player entity
// starts visible.
func (w *Engine) initialVisibility(e *models.Entity) bool {
	if w.mode != ModeRealTime || w.revealed {
		return true
	}
	center, ok := w.visionCenter()
	if !ok {
		return false
	}
	return e.DistanceTo(center) <= center.Player.VisionRadius
}
