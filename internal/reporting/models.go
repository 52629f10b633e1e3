package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ScoreSummaryRequest requests aggregated performance metrics for one
// member's reviewed calls. Team isolation: TeamID is required.

type ScoreSummaryRequest struct {
	TeamID   string    `json:"team_id"`
	MemberID string    `json:"member_id"`
	Range    TimeRange `json:"range"`
}

type ScoreSummary struct {
	TeamID   string `json:"team_id"`
	MemberID string `json:"member_id"`

	TotalCalls    int `json:"total_calls"`
	ScoredCalls   int `json:"scored_calls"`
	RecordedCalls int `json:"recorded_calls"`
	ReviewedCalls int `json:"reviewed_calls"`

	AverageOverall float64 `json:"average_overall"`
	BestOverall    float64 `json:"best_overall"`
	WorstOverall   float64 `json:"worst_overall"`

	AverageEngagement           float64 `json:"average_engagement"`
	AverageObjectionHandling    float64 `json:"average_objection_handling"`
	AverageInformationGathering float64 `json:"average_information_gathering"`
	AverageProgramExplanation   float64 `json:"average_program_explanation"`
	AverageClosingSkills        float64 `json:"average_closing_skills"`
	AverageEffectiveness        float64 `json:"average_effectiveness"`

	// CallsByCategory counts calls per practice avatar category.
	CallsByCategory map[string]int `json:"calls_by_category,omitempty"`
}
