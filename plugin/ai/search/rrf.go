package search

import "sort"

// DampingFactor is the reciprocal rank fusion constant. Larger values flatten
// the rank contribution curve; 60 is the value from the original RRF paper.
const DampingFactor = 60

// Fuse merges ranked lists with reciprocal rank fusion. Each occurrence of a
// result contributes 1/(k + rank + 1) where rank is its zero-based position
// in its list; results appearing in several lists accumulate contributions
// under their (source type, ID) identity. Scores are normalized so the top
// result is exactly 1.0, and ties keep first-seen order across lists.
//
// The input lists are not modified; the fused results are the original
// pointers with FusedScore assigned.
func Fuse(lists [][]*Result, k int) []*Result {
	if k <= 0 {
		k = DampingFactor
	}

	type fusionKey struct {
		source SourceType
		id     string
	}
	type accumulator struct {
		result *Result
		score  float64
		order  int // first-seen position, the deterministic tie-break
	}

	accumulators := map[fusionKey]*accumulator{}
	ordered := []*accumulator{}
	for _, list := range lists {
		for rank, result := range list {
			key := fusionKey{source: result.Type, id: result.ID}
			acc, ok := accumulators[key]
			if !ok {
				acc = &accumulator{result: result, order: len(ordered)}
				accumulators[key] = acc
				ordered = append(ordered, acc)
			}
			acc.score += 1.0 / float64(k+rank+1)
		}
	}
	if len(ordered) == 0 {
		return []*Result{}
	}

	var maxScore float64
	for _, acc := range ordered {
		if acc.score > maxScore {
			maxScore = acc.score
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].order < ordered[j].order
	})

	fused := make([]*Result, len(ordered))
	for i, acc := range ordered {
		acc.result.FusedScore = acc.score / maxScore
		acc.result.Stage = StageFused
		fused[i] = acc.result
	}
	return fused
}
