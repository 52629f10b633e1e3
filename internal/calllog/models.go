package calllog

import (
	"encoding/json"
	"strings"
	"time"

	"salescoach-platform/internal/transcript"
)

// Record is one reviewed training call as delivered by the platform API.
//
// Records are owned and mutated by the platform API only; this service
// holds a read-only snapshot plus an optimistic local patch after a
// successful feedback save. The pair (member_id, session_id) identifies
// a record for mutation.
type Record struct {
	MemberID  string `json:"member_id"`
	TeamID    string `json:"team_id"`
	SessionID string `json:"session_id"`
	Date      Date   `json:"date"`

	UserName         string `json:"user_name"`
	AgentName        string `json:"agent_name"`
	UserPicture      string `json:"user_picture,omitempty"`
	AgentPicture     string `json:"agent_picture,omitempty"`
	AvatarCategory   string `json:"avatar_category,omitempty"`
	AvatarDifficulty string `json:"avatar_difficulty,omitempty"`
	RecordingURL     string `json:"call_recording_url,omitempty"`

	// OverallScore is the primary 0-100 metric used for range filtering.
	// A nil score means the upstream row is malformed for filtering
	// purposes and the record is excluded by any score filter.
	OverallScore              *float64 `json:"overall_score"`
	OverallScoreText          string   `json:"overall_score_text,omitempty"`
	EngagementScore           float64  `json:"engagement_score"`
	EngagementText            string   `json:"engagement_text,omitempty"`
	ObjectionHandlingScore    float64  `json:"objection_handling_score"`
	ObjectionHandlingText     string   `json:"objection_handling_text,omitempty"`
	InformationGatheringScore float64  `json:"information_gathering_score"`
	InformationGatheringText  string   `json:"information_gathering_text,omitempty"`
	ProgramExplanationScore   float64  `json:"program_explanation_score"`
	ProgramExplanationText    string   `json:"program_explanation_text,omitempty"`
	ClosingSkillsScore        float64  `json:"closing_skills_score"`
	ClosingSkillsText         string   `json:"closing_skills_text,omitempty"`
	OverallEffectivenessScore float64  `json:"overall_effectiveness_score"`
	OverallEffectivenessText  string   `json:"overall_effectiveness_text,omitempty"`

	Transcript transcript.Transcript `json:"transcript,omitempty"`

	PowerMoment     string `json:"power_moment,omitempty"`
	CallNotes       string `json:"call_notes,omitempty"`
	LevelUpPlan1    string `json:"level_up_plan_1,omitempty"`
	LevelUpPlan2    string `json:"level_up_plan_2,omitempty"`
	LevelUpPlan3    string `json:"level_up_plan_3,omitempty"`
	ManagerFeedback string `json:"manager_feedback,omitempty"`
}

// Metric pairs a score with its explanation for the review dialog.
type Metric struct {
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// Default metric descriptions, used when the upstream row carries no
// explanatory text for a score.
var defaultMetricText = map[string]string{
	"Overall Score":         "Combined score reflecting the agent's overall performance across all metrics.",
	"Engagement":            "Measures how well the agent connects with customers and maintains their interest.",
	"Objection Handling":    "Evaluates the agent's ability to address and overcome customer concerns effectively.",
	"Information Gathering": "Assesses how well the agent collects relevant information from customers.",
	"Program Explanation":   "Rates the clarity and effectiveness of program/product explanations.",
	"Closing Skills":        "Evaluates the agent's ability to guide conversations toward successful conclusions.",
	"Overall Effectiveness": "Measures the overall impact and success of the agent's interactions.",
}

// Metrics expands the seven performance scores into labeled rows,
// substituting the default description when the row has none.
func (r Record) Metrics() []Metric {
	overall := 0.0
	if r.OverallScore != nil {
		overall = *r.OverallScore
	}
	rows := []Metric{
		{Label: "Overall Score", Value: overall, Description: r.OverallScoreText},
		{Label: "Engagement", Value: r.EngagementScore, Description: r.EngagementText},
		{Label: "Objection Handling", Value: r.ObjectionHandlingScore, Description: r.ObjectionHandlingText},
		{Label: "Information Gathering", Value: r.InformationGatheringScore, Description: r.InformationGatheringText},
		{Label: "Program Explanation", Value: r.ProgramExplanationScore, Description: r.ProgramExplanationText},
		{Label: "Closing Skills", Value: r.ClosingSkillsScore, Description: r.ClosingSkillsText},
		{Label: "Overall Effectiveness", Value: r.OverallEffectivenessScore, Description: r.OverallEffectivenessText},
	}
	for i := range rows {
		if rows[i].Description == "" {
			rows[i].Description = defaultMetricText[rows[i].Label]
		}
	}
	return rows
}

// Date decodes the upstream date field, which arrives either as a full
// RFC 3339 timestamp or as a bare YYYY-MM-DD day.
type Date struct {
	time.Time
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Absorb malformed dates; a zero date fails any bounded date filter.
		d.Time = time.Time{}
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	d.Time = time.Time{}
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}
