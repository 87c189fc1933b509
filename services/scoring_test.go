package services

import (
	"testing"

	"github.com/SAADSTACK/NeuroMetric-AI/models"

	"github.com/stretchr/testify/assert"
)

func TestScoreSheet(t *testing.T) {
	bank := DefaultQuestionBank()

	t.Run("Empty answer set yields all zeros", func(t *testing.T) {
		scores := ScoreSheet(bank, models.AnswerSet{})
		assert.Len(t, scores, len(bank))
		for _, s := range scores {
			assert.Equal(t, 0, s)
		}
	})

	t.Run("Answers land in bank order, missing slots stay zero", func(t *testing.T) {
		answers := models.AnswerSet{1: 5, 3: 2, 50: 4}
		scores := ScoreSheet(bank, answers)
		assert.Equal(t, 5, scores[0])
		assert.Equal(t, 0, scores[1])
		assert.Equal(t, 2, scores[2])
		assert.Equal(t, 4, scores[49])
	})
}

func TestTotalScore(t *testing.T) {
	bank := DefaultQuestionBank()

	t.Run("Sum of full answer set", func(t *testing.T) {
		answers := make(models.AnswerSet)
		for _, q := range bank {
			answers[q.ID] = 3
		}
		total := TotalScore(ScoreSheet(bank, answers))
		assert.Equal(t, 150, total)
	})

	t.Run("Bounds hold for every in-range answer set", func(t *testing.T) {
		maxScore := len(bank) * models.AnswerMax
		for value := models.AnswerMin; value <= models.AnswerMax; value++ {
			answers := make(models.AnswerSet)
			for _, q := range bank {
				answers[q.ID] = value
			}
			total := TotalScore(ScoreSheet(bank, answers))
			assert.GreaterOrEqual(t, total, 0)
			assert.LessOrEqual(t, total, maxScore)
		}
	})
}

func TestStatusFromScore(t *testing.T) {
	// The ladder is a total function of score; boundaries are exact.
	cases := []struct {
		score  int
		status models.ResultStatus
	}{
		{0, models.StatusCritical},
		{120, models.StatusCritical},
		{121, models.StatusPoor},
		{180, models.StatusPoor},
		{181, models.StatusNormal},
		{220, models.StatusNormal},
		{221, models.StatusGood},
		{250, models.StatusGood},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, StatusFromScore(tc.score), "score %d", tc.score)
	}
}

func TestCalculateConsistency(t *testing.T) {
	patterns := DefaultConsistencyPatterns()

	t.Run("Empty rule set is vacuously consistent", func(t *testing.T) {
		assert.Equal(t, float64(100), CalculateConsistency(nil, models.AnswerSet{1: 3, 10: 3}))
	})

	t.Run("No overlapping answers is vacuously consistent", func(t *testing.T) {
		// Question 4 is in no pattern pair.
		assert.Equal(t, float64(100), CalculateConsistency(patterns, models.AnswerSet{4: 5}))
	})

	t.Run("Pair with one side missing does not count as a check", func(t *testing.T) {
		// Only question 1 of the (1,10) pair answered.
		assert.Equal(t, float64(100), CalculateConsistency(patterns, models.AnswerSet{1: 1}))
	})

	t.Run("All pairs within tolerance scores 100", func(t *testing.T) {
		answers := make(models.AnswerSet)
		for _, p := range patterns {
			for _, pair := range p.Pairs {
				answers[pair[0]] = 4
				answers[pair[1]] = 2 // |4-2| = 2, still consistent
			}
		}
		assert.Equal(t, float64(100), CalculateConsistency(patterns, answers))
	})

	t.Run("All pairs outside tolerance scores 0", func(t *testing.T) {
		answers := make(models.AnswerSet)
		for _, p := range patterns {
			for _, pair := range p.Pairs {
				answers[pair[0]] = 5
				answers[pair[1]] = 1 // |5-1| = 4
			}
		}
		assert.Equal(t, float64(0), CalculateConsistency(patterns, answers))
	})

	t.Run("Mixed pairs give the consistent fraction", func(t *testing.T) {
		// Three checks from mood_consistency: two consistent, one not.
		answers := models.AnswerSet{
			1: 3, 10: 3, // diff 0, consistent
			2: 2, 9: 4, // diff 2, consistent
			6: 5, 16: 1, // diff 4, inconsistent
		}
		got := CalculateConsistency(patterns, answers)
		assert.InDelta(t, 100.0*2.0/3.0, got, 0.0001)
	})

	t.Run("Identical full answer set is fully consistent", func(t *testing.T) {
		answers := make(models.AnswerSet)
		for _, q := range DefaultQuestionBank() {
			answers[q.ID] = 5
		}
		assert.Equal(t, float64(100), CalculateConsistency(patterns, answers))
	})
}

func TestCategoryTotals(t *testing.T) {
	bank := DefaultQuestionBank()

	answers := make(models.AnswerSet)
	for _, q := range bank {
		answers[q.ID] = 2
	}
	totals := CategoryTotals(bank, answers)

	// Five categories of ten questions each.
	assert.Len(t, totals, 5)
	for category, total := range totals {
		assert.Equal(t, 20, total, "category %s", category)
	}

	t.Run("Unanswered questions contribute zero", func(t *testing.T) {
		totals := CategoryTotals(bank, models.AnswerSet{1: 5, 11: 3})
		assert.Equal(t, 5, totals["Mood"])
		assert.Equal(t, 3, totals["Anxiety"])
		assert.Equal(t, 0, totals["Cognitive"])
	})
}

func TestQuestionBankShape(t *testing.T) {
	bank := DefaultQuestionBank()
	assert.Len(t, bank, 50)
	for i, q := range bank {
		assert.Equal(t, i+1, q.ID, "IDs are 1-based and ordered")
		assert.NotEmpty(t, q.Text)
		assert.NotEmpty(t, q.Category)
	}

	patterns := DefaultConsistencyPatterns()
	assert.Len(t, patterns, 3)
	for _, p := range patterns {
		assert.Len(t, p.Pairs, 3)
		for _, pair := range p.Pairs {
			assert.GreaterOrEqual(t, pair[0], 1)
			assert.LessOrEqual(t, pair[0], 50)
			assert.GreaterOrEqual(t, pair[1], 1)
			assert.LessOrEqual(t, pair[1], 50)
		}
	}
}
