package detection

// SelectLargest returns the rect with strictly the greatest area.
//
// Ties keep the first rect encountered, so the result is stable with respect
// to label order. The running best starts at the sentinel with area zero:
// an empty list, or one where every rect has zero area, yields the sentinel.
func SelectLargest(rects []Rect) Rect {
	best := Rect{}
	bestArea := 0
	for _, r := range rects {
		if a := r.Area(); a > bestArea {
			bestArea = a
			best = r
		}
	}
	return best
}

// SelectKeyPoints reduces every color's cluster list to its largest cluster.
// Colors with no cluster map to the (0,0,0,0) sentinel.
func SelectKeyPoints(clusters ClusterMap) KeyPointMap {
	points := make(KeyPointMap, len(clusters))
	for boundary, rects := range clusters {
		points[boundary] = SelectLargest(rects)
	}
	return points
}
