// Package scoring implements the inspection scoring and classification engine.
//
// The engine is a pure function of an answer set and a schema. It never fails:
// missing or malformed answers fail essential checks and score zero.
package scoring

// Result is the output of one scoring pass.
type Result struct {
	Rejected       bool           `json:"rejected"`
	Score          int            `json:"score"`
	MaxScore       int            `json:"max_score"`
	Classification Classification `json:"classification"`
	ClassID        int            `json:"classification_id"`
	Complete       bool           `json:"complete"`
	// FailedChecks lists failing essential keys in schema order.
	FailedChecks []string `json:"failed_checks,omitempty"`
	// Unanswered lists scored keys still at the sentinel, in schema order.
	Unanswered []string `json:"unanswered,omitempty"`
}

// Normalized returns Score/MaxScore for display, 0 when nothing can be scored.
func (r Result) Normalized() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return float64(r.Score) / float64(r.MaxScore)
}

// MaxScore sums the highest option points of every characteristic.
func MaxScore(scored []ScoredCharacteristic) int {
	total := 0
	for _, c := range scored {
		total += c.MaxPoints()
	}
	return total
}

// Score evaluates answers against the essential and scored schemas.
//
// Any failing essential check rejects the inspection and skips scoring entirely:
// a rejected result reports Score 0, Complete false and no Unanswered keys.
func Score(answers AnswerSet, essential []EssentialCheck, scored []ScoredCharacteristic, b Banding) Result {
	res := Result{MaxScore: MaxScore(scored)}

	for _, c := range essential {
		a, ok := answers.Get(c.Key)
		if !c.Passes(a, ok) {
			res.FailedChecks = append(res.FailedChecks, c.Key)
		}
	}
	if len(res.FailedChecks) > 0 {
		res.Rejected = true
		res.Classification = ClassRejected
		res.ClassID = ClassRejected.ID()
		return res
	}

	res.Complete = true
	for _, c := range scored {
		id := selectedOption(answers, c.Key)
		if id == UnsetOption {
			res.Complete = false
			res.Unanswered = append(res.Unanswered, c.Key)
			continue
		}
		pts, _ := c.Points(id)
		res.Score += pts
	}

	switch {
	case !res.Complete:
		res.Classification = ClassPending
	case res.Score == 0:
		res.Classification = ClassUnclassified
	default:
		res.Classification = Classify(res.Score, b)
	}
	res.ClassID = res.Classification.ID()
	return res
}

// selectedOption returns the option id chosen for key, or the sentinel.
// Boolean and empty answers count as unset.
func selectedOption(answers AnswerSet, key string) string {
	a, ok := answers.Get(key)
	if !ok || a.IsBool() || a.String() == "" {
		return UnsetOption
	}
	return a.String()
}
