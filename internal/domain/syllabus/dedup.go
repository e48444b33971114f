package syllabus

// DedupCandidates collapses candidates sharing (date, title, course) to the
// first occurrence, preserving input order. It returns the kept candidates
// and how many were removed.
func DedupCandidates(in []Candidate) ([]Candidate, int) {
	if len(in) == 0 {
		return nil, 0
	}

	seen := make(map[string]struct{}, len(in))
	out := make([]Candidate, 0, len(in))
	for _, candidate := range in {
		key := candidate.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, candidate)
	}
	return out, len(in) - len(out)
}
