package search

// Constants for result evaluation.
const (
	usefulScoreThreshold = 0.6  // top score threshold for "useful"
	minResultsForUse     = 3    // fewer results than this suggests expanding
	scoreSpreadThreshold = 0.15 // spread under this means no clear winner
)

// SuggestedAction is the recommended follow-up after evaluating a result set.
type SuggestedAction string

const (
	ActionUse    SuggestedAction = "use"    // use the results as-is
	ActionExpand SuggestedAction = "expand" // widen the retrieval pool
	ActionDirect SuggestedAction = "direct" // nothing useful, answer without evidence
)

// Evaluation describes the usefulness of a result set.
type Evaluation struct {
	IsUseful        bool
	Reason          string
	SuggestedAction SuggestedAction
	TopScore        float64
	ScoreSpread     float64 // gap between the top two scores
}

// EvaluateResults judges whether a ranked result set is worth using, should
// be widened, or abandoned. The heuristic reads only the score shape: a
// strong top hit is used, a weak crowded top is expanded, nothing is direct.
func EvaluateResults(results []*Result) *Evaluation {
	if len(results) == 0 {
		return &Evaluation{
			IsUseful:        false,
			Reason:          "empty_results",
			SuggestedAction: ActionDirect,
		}
	}

	topScore := results[0].Score()
	var scoreSpread float64
	if len(results) >= 2 {
		scoreSpread = topScore - results[1].Score()
	}

	if topScore >= usefulScoreThreshold {
		return &Evaluation{
			IsUseful:        true,
			Reason:          "high_relevance",
			SuggestedAction: ActionUse,
			TopScore:        topScore,
			ScoreSpread:     scoreSpread,
		}
	}

	if len(results) < minResultsForUse || scoreSpread < scoreSpreadThreshold {
		return &Evaluation{
			IsUseful:        false,
			Reason:          "weak_crowded_top",
			SuggestedAction: ActionExpand,
			TopScore:        topScore,
			ScoreSpread:     scoreSpread,
		}
	}

	return &Evaluation{
		IsUseful:        true,
		Reason:          "clear_winner_below_threshold",
		SuggestedAction: ActionUse,
		TopScore:        topScore,
		ScoreSpread:     scoreSpread,
	}
}
