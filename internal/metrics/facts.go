package metrics

import (
	"strings"
	"time"

	"sprintlens/internal/timeline"
	"sprintlens/internal/workflow"
)

// Worklog is one time-tracking entry on a work item.
type Worklog struct {
	Author           string    `json:"author"`
	Started          time.Time `json:"started"`
	TimeSpentSeconds int64     `json:"timeSpentSeconds"`
	Comment          string    `json:"comment,omitempty"`
}

// Input gathers everything known about one item inside one reporting period.
// Every field is optional; missing data degrades the dependent facts to their
// zero values instead of failing.
type Input struct {
	Created  time.Time
	Updated  time.Time
	Resolved *time.Time
	Now      time.Time

	InitialStatus  string
	StatusEvents   []timeline.ChangeEvent
	AssigneeEvents []timeline.ChangeEvent
	Worklogs       []Worklog
	Commits        []time.Time

	// Developer anchors the "took work" resolution. Empty means "whoever
	// logged work first".
	Developer string
}

// Facts is the derived, read-only metric set for one item and one period.
type Facts struct {
	DoneAt           time.Time  `json:"doneAt"`
	LeadTimeSeconds  float64    `json:"leadTimeSeconds"`
	CycleTimeSeconds float64    `json:"cycleTimeSeconds"`
	WaitTimeSeconds  float64    `json:"waitTimeSeconds"`
	TookWorkAt       *time.Time `json:"tookWorkAt,omitempty"`
	FirstWorklog     *time.Time `json:"firstWorklog,omitempty"`
	FirstCommit      *time.Time `json:"firstCommit,omitempty"`
	LastCommit       *time.Time `json:"lastCommit,omitempty"`

	DaysToFirstCommit *float64 `json:"daysToFirstCommit,omitempty"`
	CommitCount       int      `json:"commitCount"`
	CommitsPerDay     bool     `json:"commitsPerDay"`

	DaysToClose           *float64 `json:"daysToClose,omitempty"`
	WentToDone            bool     `json:"wentToDone"`
	WentToWorkAfterCommit bool     `json:"wentToWorkAfterCommit"`
	ReturnedToWork        bool     `json:"returnedToWork"`
	StableClose           bool     `json:"stableClose"`
	ReopenCount           int      `json:"reopenCount"`
}

// Compute derives the full fact set for one item. It never fails: facts whose
// inputs are absent stay at their zero values.
func Compute(in Input, cls workflow.Classifier) Facts {
	facts := Facts{}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	facts.FirstCommit, facts.LastCommit, facts.CommitCount = commitBounds(in.Commits)
	facts.CommitsPerDay = commitsOnDistinctDays(in.Commits)
	facts.FirstWorklog = firstWorklogAt(in.Worklogs, in.Developer)

	facts.DoneAt = doneAt(in, cls, now)

	if !in.Created.IsZero() && !facts.DoneAt.Before(in.Created) {
		facts.LeadTimeSeconds = facts.DoneAt.Sub(in.Created).Seconds()
	}

	if workStart := firstEntryInto(in.StatusEvents, cls, workflow.CategoryWork); workStart != nil {
		cycle := facts.DoneAt.Sub(*workStart).Seconds()
		if cycle < 0 {
			cycle = 0
		}
		if cycle > facts.LeadTimeSeconds {
			cycle = facts.LeadTimeSeconds
		}
		facts.CycleTimeSeconds = cycle
	}
	facts.WaitTimeSeconds = facts.LeadTimeSeconds - facts.CycleTimeSeconds

	facts.TookWorkAt = tookWorkAt(in, cls)

	if facts.FirstCommit != nil && facts.TookWorkAt != nil {
		days := facts.FirstCommit.Sub(*facts.TookWorkAt).Hours() / 24
		facts.DaysToFirstCommit = &days
	}

	scanAfterLastCommit(&facts, in.StatusEvents, cls)
	facts.ReopenCount = countReopens(in.StatusEvents, cls)

	return facts
}

// doneAt is the first instant the timeline enters the done category, falling
// back to resolution time, then last-updated time, then now.
func doneAt(in Input, cls workflow.Classifier, now time.Time) time.Time {
	if !in.Created.IsZero() && cls.Categories(in.InitialStatus).Has(workflow.CategoryDone) {
		return in.Created
	}
	if entered := firstEntryInto(in.StatusEvents, cls, workflow.CategoryDone); entered != nil {
		return *entered
	}
	return timeline.EffectiveEnd(in.Resolved, in.Updated, now)
}

func firstEntryInto(events []timeline.ChangeEvent, cls workflow.Classifier, category workflow.Category) *time.Time {
	for _, e := range events {
		if cls.Categories(e.To).Has(category) {
			at := e.At
			return &at
		}
	}
	return nil
}

// tookWorkAt resolves when the developer picked the item up: first worklog,
// else first assignment to the developer, else first transition into work.
func tookWorkAt(in Input, cls workflow.Classifier) *time.Time {
	if wl := firstWorklogAt(in.Worklogs, in.Developer); wl != nil {
		return wl
	}
	if in.Developer != "" {
		for _, e := range in.AssigneeEvents {
			if strings.EqualFold(e.To, in.Developer) {
				at := e.At
				return &at
			}
		}
	}
	return firstEntryInto(in.StatusEvents, cls, workflow.CategoryWork)
}

func firstWorklogAt(worklogs []Worklog, developer string) *time.Time {
	var first *time.Time
	for i := range worklogs {
		wl := worklogs[i]
		if wl.Started.IsZero() {
			continue
		}
		if developer != "" && !strings.EqualFold(wl.Author, developer) {
			continue
		}
		if first == nil || wl.Started.Before(*first) {
			at := wl.Started
			first = &at
		}
	}
	return first
}

func commitBounds(commits []time.Time) (first, last *time.Time, count int) {
	for i := range commits {
		c := commits[i]
		if c.IsZero() {
			continue
		}
		count++
		if first == nil || c.Before(*first) {
			at := c
			first = &at
		}
		if last == nil || c.After(*last) {
			at := c
			last = &at
		}
	}
	return first, last, count
}

// commitsOnDistinctDays is true iff the item has more than one commit and no
// two commits share a calendar day.
func commitsOnDistinctDays(commits []time.Time) bool {
	days := make(map[string]bool)
	n := 0
	for _, c := range commits {
		if c.IsZero() {
			continue
		}
		n++
		days[c.Format("2006-01-02")] = true
	}
	return n > 1 && len(days) == n
}

// scanAfterLastCommit walks status changes at or after the last commit and
// derives the closing-stability facts. History before the last commit is
// deliberately out of scope for these flags.
func scanAfterLastCommit(facts *Facts, events []timeline.ChangeEvent, cls workflow.Classifier) {
	if facts.LastCommit == nil {
		return
	}
	last := *facts.LastCommit

	reachedDone := false
	unstableExit := false

	for _, e := range events {
		if e.At.Before(last) {
			continue
		}
		from := cls.Categories(e.From)
		to := cls.Categories(e.To)

		if to.Has(workflow.CategoryDone) {
			reachedDone = true
			if !facts.WentToDone {
				facts.WentToDone = true
				days := e.At.Sub(last).Hours() / 24
				facts.DaysToClose = &days
			}
		}

		if to.Has(workflow.CategoryWork) && !from.Has(workflow.CategoryWork) {
			facts.WentToWorkAfterCommit = true
		}

		if (to.Has(workflow.CategoryWork) || to.Has(workflow.CategoryQueue)) &&
			(from.Has(workflow.CategoryDone) || from.Has(workflow.CategoryTesting) ||
				from.Has(workflow.CategoryReview) || from.Has(workflow.CategoryWaiting)) {
			facts.ReturnedToWork = true
		}

		if from.Has(workflow.CategoryDone) && !to.Has(workflow.CategoryDone) {
			unstableExit = true
		}
	}

	facts.StableClose = reachedDone && !unstableExit
}

func countReopens(events []timeline.ChangeEvent, cls workflow.Classifier) int {
	count := 0
	for _, e := range events {
		if cls.Categories(e.From).Has(workflow.CategoryDone) && !cls.Categories(e.To).Has(workflow.CategoryDone) {
			count++
		}
	}
	return count
}

