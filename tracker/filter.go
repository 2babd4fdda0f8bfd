package tracker

// FilterObjects returns the objects worth tracking.  An object is kept when
// its label has parameters, its probability is strictly greater than that
// label's confidence threshold and, if a region is given, its centroid lies
// inside the region.  The order of the kept objects is preserved
func FilterObjects(objs []Object, params Params, region *Region) []Object {

	kept := make([]Object, 0, len(objs))

	for _, obj := range objs {

		p, ok := params[obj.Label]

		if !ok || obj.Prob <= p.ConfidenceThreshold {
			continue
		}

		if region != nil && !region.Contains(obj.Centroid()) {
			continue
		}

		kept = append(kept, obj)
	}

	return kept
}
