package services

import (
	"github.com/SAADSTACK/NeuroMetric-AI/models"
)

// Pure scoring functions. None of these ever fail: absent answers score as
// zero, and out-of-range values are accepted as-is (the capture boundary in
// the session service is where [1,5] is enforced).

// ScoreSheet converts an answer set into the ordered per-question score
// slice, one slot per bank entry. This is the only place where "unanswered"
// becomes the 0 sentinel; everywhere upstream, absence from the AnswerSet is
// the unanswered state.
func ScoreSheet(bank []models.Question, answers models.AnswerSet) []int {
	scores := make([]int, len(bank))
	for i, q := range bank {
		if v, ok := answers[q.ID]; ok {
			scores[i] = v
		}
	}
	return scores
}

// TotalScore sums an ordered score sheet.
func TotalScore(scores []int) int {
	total := 0
	for _, s := range scores {
		total += s
	}
	return total
}

// StatusFromScore classifies a total score on the fixed threshold ladder.
// Ascending boundaries, first match wins. StatusExcellent is reserved and
// never produced here.
func StatusFromScore(score int) models.ResultStatus {
	switch {
	case score <= 120:
		return models.StatusCritical
	case score <= 180:
		return models.StatusPoor
	case score <= 220:
		return models.StatusNormal
	default:
		return models.StatusGood
	}
}

// CalculateConsistency scores answer coherence over the pattern pairs.
// A pair counts as one check only when both questions have been answered; a
// check is consistent when the two answers differ by at most 2. The result is
// the consistent fraction as a percentage, defined as 100 when no checks
// apply (vacuously consistent, never a division by zero).
func CalculateConsistency(patterns []models.ConsistencyPattern, answers models.AnswerSet) float64 {
	totalChecks := 0
	consistentChecks := 0

	for _, pattern := range patterns {
		for _, pair := range pattern.Pairs {
			val1, ok1 := answers[pair[0]]
			val2, ok2 := answers[pair[1]]
			if !ok1 || !ok2 {
				continue
			}
			totalChecks++
			diff := val1 - val2
			if diff < 0 {
				diff = -diff
			}
			if diff <= 2 {
				consistentChecks++
			}
		}
	}

	if totalChecks == 0 {
		return 100
	}
	return float64(consistentChecks) / float64(totalChecks) * 100
}

// CategoryTotals sums answers grouped by each question's category label.
// Used only as input to the clinical interpretation call; not part of the
// canonical result schema.
func CategoryTotals(bank []models.Question, answers models.AnswerSet) map[string]int {
	totals := make(map[string]int)
	for _, q := range bank {
		totals[q.Category] += answers[q.ID] // Missing keys contribute zero
	}
	return totals
}
