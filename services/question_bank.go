package services

import "github.com/SAADSTACK/NeuroMetric-AI/models"

// DefaultQuestionBank defines the ordered question bank for the assessment.
// Note: These are currently hardcoded. In a more dynamic system, they might
// come from a DB or config file. IDs are 1-based and stable; the slice order
// is both display order and scoring order.
func DefaultQuestionBank() []models.Question {
	return []models.Question{
		// Mood and Emotional State
		{ID: 1, Text: "I often feel happy and content with my life", Category: "Mood"},
		{ID: 2, Text: "My mood changes frequently throughout the day", Category: "Mood"},
		{ID: 3, Text: "I find it difficult to experience pleasure in activities I used to enjoy", Category: "Mood"},
		{ID: 4, Text: "I feel overwhelmed by my emotions", Category: "Mood"},
		{ID: 5, Text: "I have periods of excessive energy followed by periods of exhaustion", Category: "Mood"},
		{ID: 6, Text: "I am generally satisfied with my personal relationships", Category: "Mood"},
		{ID: 7, Text: "I feel lonely even when I'm with other people", Category: "Mood"},
		{ID: 8, Text: "I am able to handle criticism without becoming upset", Category: "Mood"},
		{ID: 9, Text: "I often feel irritable or angry for no apparent reason", Category: "Mood"},
		{ID: 10, Text: "I feel emotionally stable most of the time", Category: "Mood"},

		// Anxiety and Stress
		{ID: 11, Text: "I worry excessively about everyday situations", Category: "Anxiety"},
		{ID: 12, Text: "I feel tense or on edge most of the time", Category: "Anxiety"},
		{ID: 13, Text: "I experience physical symptoms of anxiety (racing heart, sweating, trembling)", Category: "Anxiety"},
		{ID: 14, Text: "I avoid social situations because they make me anxious", Category: "Anxiety"},
		{ID: 15, Text: "I have difficulty falling or staying asleep due to worrying", Category: "Anxiety"},
		{ID: 16, Text: "I feel overwhelmed by my responsibilities", Category: "Anxiety"},
		{ID: 17, Text: "I am able to relax and unwind easily", Category: "Anxiety"},
		{ID: 18, Text: "I experience panic attacks or sudden feelings of intense fear", Category: "Anxiety"},
		{ID: 19, Text: "I feel constantly under pressure", Category: "Anxiety"},
		{ID: 20, Text: "I can manage stress effectively in my daily life", Category: "Anxiety"},

		// Self-Perception
		{ID: 21, Text: "I have a positive opinion of myself", Category: "Self-Perception"},
		{ID: 22, Text: "I feel confident in my abilities", Category: "Self-Perception"},
		{ID: 23, Text: "I often compare myself negatively to others", Category: "Self-Perception"},
		{ID: 24, Text: "I know who I am and what I want in life", Category: "Self-Perception"},
		{ID: 25, Text: "I feel like I'm living authentically", Category: "Self-Perception"},
		{ID: 26, Text: "I am comfortable with how others perceive me", Category: "Self-Perception"},
		{ID: 27, Text: "I feel worthy of love and respect", Category: "Self-Perception"},
		{ID: 28, Text: "I struggle with feelings of inadequacy", Category: "Self-Perception"},
		{ID: 29, Text: "I am proud of my accomplishments", Category: "Self-Perception"},
		{ID: 30, Text: "I feel disconnected from my true self", Category: "Self-Perception"},

		// Cognitive
		{ID: 31, Text: "I can concentrate easily on tasks", Category: "Cognitive"},
		{ID: 32, Text: "My mind often goes blank", Category: "Cognitive"},
		{ID: 33, Text: "I have difficulty making decisions", Category: "Cognitive"},
		{ID: 34, Text: "I am able to think clearly and logically", Category: "Cognitive"},
		{ID: 35, Text: "I frequently forget important things", Category: "Cognitive"},
		{ID: 36, Text: "I feel mentally sharp and alert", Category: "Cognitive"},
		{ID: 37, Text: "I struggle with problem-solving", Category: "Cognitive"},
		{ID: 38, Text: "My thoughts race uncontrollably at times", Category: "Cognitive"},
		{ID: 39, Text: "I can easily learn new things", Category: "Cognitive"},
		{ID: 40, Text: "I feel mentally exhausted most of the time", Category: "Cognitive"},

		// Behavioral
		{ID: 41, Text: "I maintain healthy daily routines", Category: "Behavioral"},
		{ID: 42, Text: "I engage in self-destructive behaviors", Category: "Behavioral"},
		{ID: 43, Text: "I take good care of my physical health", Category: "Behavioral"},
		{ID: 44, Text: "I procrastinate important tasks", Category: "Behavioral"},
		{ID: 45, Text: "I am able to set and maintain boundaries", Category: "Behavioral"},
		{ID: 46, Text: "I use substances to cope with difficult emotions", Category: "Behavioral"},
		{ID: 47, Text: "I engage in regular physical activity", Category: "Behavioral"},
		{ID: 48, Text: "I have difficulty completing tasks", Category: "Behavioral"},
		{ID: 49, Text: "I maintain a balanced lifestyle", Category: "Behavioral"},
		{ID: 50, Text: "I often act impulsively without thinking", Category: "Behavioral"},
	}
}

// DefaultConsistencyPatterns defines the question pairs whose answers are
// expected to correlate. The pair lists are part of the instrument's
// semantics and must not be edited.
func DefaultConsistencyPatterns() []models.ConsistencyPattern {
	return []models.ConsistencyPattern{
		{Name: "mood_consistency", Pairs: [][2]int{{1, 10}, {2, 9}, {6, 16}}},
		{Name: "anxiety_pattern", Pairs: [][2]int{{11, 21}, {12, 22}, {15, 25}}},
		{Name: "self_esteem_consistency", Pairs: [][2]int{{31, 41}, {32, 42}, {37, 47}}},
	}
}
