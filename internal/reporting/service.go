package reporting

import (
	"context"
	"errors"
	"time"

	"salescoach-platform/internal/calllog"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts record access for reporting.
//
// IMPORTANT:
// - Implementations must enforce team filtering.
// - Records come from the read-only call-log snapshot; reporting never
//   mutates them.

type Repository interface {
	ListRecords(ctx context.Context, teamID, memberID string, from, to time.Time) ([]calllog.Record, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

// ScoreSummary aggregates a member's reviewed calls in the given range.
// An all-zero range means all time; a half-open range is rejected.
func (s *Service) ScoreSummary(ctx context.Context, req ScoreSummaryRequest) (ScoreSummary, error) {
	if req.TeamID == "" || req.MemberID == "" {
		return ScoreSummary{}, ErrInvalidRequest
	}
	bounded := !req.Range.From.IsZero() || !req.Range.To.IsZero()
	if bounded && (req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From)) {
		return ScoreSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return ScoreSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListRecords(ctx, req.TeamID, req.MemberID, req.Range.From, req.Range.To)
	if err != nil {
		return ScoreSummary{}, err
	}

	out := ScoreSummary{
		TeamID:          req.TeamID,
		MemberID:        req.MemberID,
		CallsByCategory: map[string]int{},
	}
	var (
		sumOverall              float64
		sumEngagement           float64
		sumObjectionHandling    float64
		sumInformationGathering float64
		sumProgramExplanation   float64
		sumClosingSkills        float64
		sumEffectiveness        float64
	)
	for _, r := range rows {
		out.TotalCalls++
		if r.RecordingURL != "" {
			out.RecordedCalls++
		}
		if r.ManagerFeedback != "" {
			out.ReviewedCalls++
		}
		if r.AvatarCategory != "" {
			out.CallsByCategory[r.AvatarCategory]++
		}
		if r.OverallScore == nil {
			// Unscored rows count toward totals only.
			continue
		}

		score := *r.OverallScore
		out.ScoredCalls++
		sumOverall += score
		sumEngagement += r.EngagementScore
		sumObjectionHandling += r.ObjectionHandlingScore
		sumInformationGathering += r.InformationGatheringScore
		sumProgramExplanation += r.ProgramExplanationScore
		sumClosingSkills += r.ClosingSkillsScore
		sumEffectiveness += r.OverallEffectivenessScore

		if out.ScoredCalls == 1 || score > out.BestOverall {
			out.BestOverall = score
		}
		if out.ScoredCalls == 1 || score < out.WorstOverall {
			out.WorstOverall = score
		}
	}
	if out.ScoredCalls > 0 {
		n := float64(out.ScoredCalls)
		out.AverageOverall = sumOverall / n
		out.AverageEngagement = sumEngagement / n
		out.AverageObjectionHandling = sumObjectionHandling / n
		out.AverageInformationGathering = sumInformationGathering / n
		out.AverageProgramExplanation = sumProgramExplanation / n
		out.AverageClosingSkills = sumClosingSkills / n
		out.AverageEffectiveness = sumEffectiveness / n
	}
	if len(out.CallsByCategory) == 0 {
		out.CallsByCategory = nil
	}
	return out, nil
}
