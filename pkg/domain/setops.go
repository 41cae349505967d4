package domain

import "sort"

// MergeCandidates collapses duplicate discoveries by normalized name. The
// first record seen for a name survives and absorbs each later duplicate via
// Merge, so it ends up holding the union of all per-source scores. Input
// order is preserved for survivors, which keeps the result deterministic for
// a deterministic source walk.
func MergeCandidates(cands []Candidate) []Candidate {
	index := make(map[string]int, len(cands))
	out := make([]Candidate, 0, len(cands))

	for _, c := range cands {
		key := NormalizeName(c.Name)
		if at, seen := index[key]; seen {
			dup := c
			out[at].Merge(&dup)
			continue
		}
		index[key] = len(out)
		out = append(out, c.Clone())
	}
	return out
}

// AdditionSet computes discovered minus existing by normalized name. The
// result preserves the discovered order and is disjoint from existing; an
// entry present in both sets is never re-proposed.
func AdditionSet(discovered []Candidate, existing []ListEntry) []Candidate {
	known := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		known[NormalizeName(e.Name)] = struct{}{}
	}

	var out []Candidate
	for _, c := range discovered {
		if _, dup := known[NormalizeName(c.Name)]; dup {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// SortForProposal orders candidates the way the proposal presents them:
// descending overall score, candidates without a score last, ties broken by
// normalized name ascending. The sort is what makes 1-based approval indices
// meaningful, so it must be deterministic.
func SortForProposal(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		si, iOK := cands[i].OverallScore()
		sj, jOK := cands[j].OverallScore()
		switch {
		case iOK && !jOK:
			return true
		case !iOK && jOK:
			return false
		case iOK && jOK && si != sj:
			return si > sj
		}
		return NormalizeName(cands[i].Name) < NormalizeName(cands[j].Name)
	})
}
