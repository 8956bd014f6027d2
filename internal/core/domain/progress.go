package domain

import "github.com/shopspring/decimal"

// milestoneContributionCap bounds the milestone share of effective progress at
// 30 percentage points regardless of milestone count. Journal links carry no
// sum constraint, so this cap is what keeps the milestone side of the model
// bounded.
const milestoneContributionCap = 30

var hundred = decimal.NewFromInt(100)

// JournalContribution sums the progress contributions of the goal's journal
// links. Each link is clamped to [0,100] before summing; the running sum is
// not clamped here.
func JournalContribution(links []JournalLink) decimal.Decimal {
	sum := decimal.Zero
	for i := range links {
		contribution := decimal.NewFromInt(int64(links[i].ProgressContribution))
		if contribution.IsNegative() {
			contribution = decimal.Zero
		} else if contribution.GreaterThan(hundred) {
			contribution = hundred
		}
		sum = sum.Add(contribution)
	}
	return sum
}

// MilestoneContribution computes the weighted milestone share of progress:
// cap * weightSum / count. A goal without milestones contributes zero.
func MilestoneContribution(milestones []Milestone) decimal.Decimal {
	if len(milestones) == 0 {
		return decimal.Zero
	}
	weightSum := decimal.Zero
	for i := range milestones {
		weightSum = weightSum.Add(milestones[i].Weight())
	}
	return decimal.NewFromInt(milestoneContributionCap).
		Mul(weightSum).
		Div(decimal.NewFromInt(int64(len(milestones))))
}

// EffectiveProgress computes the goal's progress percentage from its journal
// links and milestones: min(100, journal + milestone), truncated to an integer.
// Always in [0,100]. This is the single source of truth for the cached
// ProgressPercentage field.
func EffectiveProgress(g *Goal) int {
	total := JournalContribution(g.JournalLinks).Add(MilestoneContribution(g.Milestones))
	if total.GreaterThan(hundred) {
		total = hundred
	}
	return int(total.IntPart())
}

// ShouldPromptCompletion decides whether a completion confirmation is required
// before committing a mutation. It is evaluated against the simulated next
// state of the goal, not the persisted one, and the simulated state must be
// discarded if the user cancels.
func ShouldPromptCompletion(next *Goal) bool {
	return EffectiveProgress(next) >= 100 && next.CanonicalStatus() != StatusAchieved
}

// StatusAfterProgress returns the status implied by the goal's effective
// progress: a yet-to-start goal with partial progress auto-advances to
// in-progress. Advancing to achieved is never implicit; it goes through the
// completion confirmation. All other statuses are returned unchanged.
func StatusAfterProgress(g *Goal) GoalStatus {
	status := g.CanonicalStatus()
	progress := EffectiveProgress(g)
	if status == StatusYetToStart && progress > 0 && progress < 100 {
		return StatusInProgress
	}
	return status
}
