package argallery

// ResolveRaycast casts a ray through the screen point pt against the existing
// vertical plane geometry tracked by session and returns the nearest hit. It
// reports false when view cannot build a query for pt or nothing is hit.
// Estimated surfaces are never considered.
func ResolveRaycast(view View, session TrackingSession, pt Vec2) (RaycastResult, bool) {
	if view == nil || session == nil {
		return RaycastResult{}, false
	}
	q, ok := view.RaycastQuery(pt, RaycastTargetExistingPlaneGeometry, AlignmentVertical)
	if !ok {
		return RaycastResult{}, false
	}
	hits := session.Raycast(q)
	if len(hits) == 0 {
		return RaycastResult{}, false
	}
	return hits[0], true
}
