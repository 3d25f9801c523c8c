package risk

import (
	"fmt"
	"math"
	"strings"
)

// Thresholds holds the trip points for every risk rule. A rule fires when the
// measured value strictly exceeds its threshold.
type Thresholds struct {
	AgeDays           float64  `json:"ageDays"`
	SprintChanges     int      `json:"sprintChanges"`
	AssigneeChanges   int      `json:"assigneeChanges"`
	DaysSinceActivity float64  `json:"daysSinceActivity"`
	Reopens           int      `json:"reopens"`
	ReviewDays        float64  `json:"reviewDays"`
	TestingDays       float64  `json:"testingDays"`
	PRIterations      int      `json:"prIterations"`
	HighPriorities    []string `json:"highPriorities"`
}

// Weights holds the score contribution of each triggered rule.
type Weights struct {
	Age               float64 `json:"age"`
	SprintChanges     float64 `json:"sprintChanges"`
	AssigneeChanges   float64 `json:"assigneeChanges"`
	DaysSinceActivity float64 `json:"daysSinceActivity"`
	Reopens           float64 `json:"reopens"`
	Review            float64 `json:"review"`
	Testing           float64 `json:"testing"`
	PRIterations      float64 `json:"prIterations"`
	Priority          float64 `json:"priority"`
}

// DefaultThresholds returns the stock rule configuration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AgeDays:           14,
		SprintChanges:     1,
		AssigneeChanges:   2,
		DaysSinceActivity: 3,
		Reopens:           0,
		ReviewDays:        2,
		TestingDays:       2,
		PRIterations:      3,
		HighPriorities:    []string{"highest", "critical", "blocker"},
	}
}

// DefaultWeights returns the stock score contributions.
func DefaultWeights() Weights {
	return Weights{
		Age:               15,
		SprintChanges:     15,
		AssigneeChanges:   10,
		DaysSinceActivity: 10,
		Reopens:           20,
		Review:            10,
		Testing:           10,
		PRIterations:      10,
		Priority:          15,
	}
}

// Signals are the measured per-item values the rules inspect.
type Signals struct {
	AgeDays           float64 `json:"ageDays"`
	SprintChanges     int     `json:"sprintChanges"`
	AssigneeChanges   int     `json:"assigneeChanges"`
	DaysSinceActivity float64 `json:"daysSinceActivity"`
	Reopens           int     `json:"reopens"`
	ReviewDays        float64 `json:"reviewDays"`
	TestingDays       float64 `json:"testingDays"`
	PRIterations      int     `json:"prIterations"`
	Priority          string  `json:"priority"`
}

// Factor explains one triggered rule.
type Factor struct {
	Type    string  `json:"type"`
	Weight  float64 `json:"weight"`
	Message string  `json:"message"`
}

// Score is the capped aggregate risk for one item.
type Score struct {
	Score   int      `json:"score"`
	Factors []Factor `json:"factors"`
}

// Evaluate runs every rule in fixed order, sums the triggered weights and
// clamps the rounded result to [0, 100].
func Evaluate(s Signals, th Thresholds, w Weights) Score {
	var factors []Factor

	if s.AgeDays > th.AgeDays {
		factors = append(factors, Factor{
			Type:    "age",
			Weight:  w.Age,
			Message: fmt.Sprintf("Item is %.0f days old (threshold %.0f)", s.AgeDays, th.AgeDays),
		})
	}
	if s.SprintChanges > th.SprintChanges {
		factors = append(factors, Factor{
			Type:    "sprint_changes",
			Weight:  w.SprintChanges,
			Message: fmt.Sprintf("Moved between sprints %d times", s.SprintChanges),
		})
	}
	if s.AssigneeChanges > th.AssigneeChanges {
		factors = append(factors, Factor{
			Type:    "assignee_changes",
			Weight:  w.AssigneeChanges,
			Message: fmt.Sprintf("Changed hands %d times", s.AssigneeChanges),
		})
	}
	if s.DaysSinceActivity > th.DaysSinceActivity {
		factors = append(factors, Factor{
			Type:    "inactivity",
			Weight:  w.DaysSinceActivity,
			Message: fmt.Sprintf("No activity for %.1f days", s.DaysSinceActivity),
		})
	}
	if s.Reopens > th.Reopens {
		factors = append(factors, Factor{
			Type:    "reopens",
			Weight:  w.Reopens,
			Message: fmt.Sprintf("Reopened %d times", s.Reopens),
		})
	}
	if s.ReviewDays > th.ReviewDays {
		factors = append(factors, Factor{
			Type:    "review_time",
			Weight:  w.Review,
			Message: fmt.Sprintf("In review for %.1f days (threshold %.0f)", s.ReviewDays, th.ReviewDays),
		})
	}
	if s.TestingDays > th.TestingDays {
		factors = append(factors, Factor{
			Type:    "testing_time",
			Weight:  w.Testing,
			Message: fmt.Sprintf("In testing for %.1f days (threshold %.0f)", s.TestingDays, th.TestingDays),
		})
	}
	if s.PRIterations > th.PRIterations {
		factors = append(factors, Factor{
			Type:    "pr_iterations",
			Weight:  w.PRIterations,
			Message: fmt.Sprintf("Pull request went through %d iterations", s.PRIterations),
		})
	}
	if isHighPriority(s.Priority, th.HighPriorities) {
		factors = append(factors, Factor{
			Type:    "priority",
			Weight:  w.Priority,
			Message: fmt.Sprintf("Priority is %q", s.Priority),
		})
	}

	total := 0.0
	for _, f := range factors {
		total += f.Weight
	}

	score := int(math.Round(total))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Score{Score: score, Factors: factors}
}

func isHighPriority(priority string, keywords []string) bool {
	if priority == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.EqualFold(priority, kw) {
			return true
		}
	}
	return false
}
