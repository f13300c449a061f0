package alerts

import (
	"fmt"
	"strings"
	"time"

	"github.com/renewalhq/subtrackr-backend/internal/billing"
	"github.com/renewalhq/subtrackr-backend/internal/subscriptions"
	"github.com/renewalhq/subtrackr-backend/pkg/enums"
)

// Computed alerts are derived from the live subscription state on every
// read. They carry no id and cannot be dismissed.

func upcomingRenewals(views []subscriptions.View, now time.Time) []View {
	var out []View
	for _, sub := range views {
		if sub.Status == enums.SubscriptionStatusCancelled || sub.NextBillingDate == nil {
			continue
		}
		days := billing.DaysUntil(*sub.NextBillingDate, now)
		if days < 0 || days > billing.RenewalWindowDays {
			continue
		}
		out = append(out, computedView(sub, enums.AlertTypeUpcomingRenewal,
			fmt.Sprintf("%s renews %s", sub.Name, inDays(days))))
	}
	return out
}

func trialsEnding(views []subscriptions.View, now time.Time) []View {
	var out []View
	for _, sub := range views {
		if sub.Status != enums.SubscriptionStatusTrial || sub.TrialEndDate == nil {
			continue
		}
		days := billing.DaysUntil(*sub.TrialEndDate, now)
		if days < 0 || days > billing.RenewalWindowDays {
			continue
		}
		out = append(out, computedView(sub, enums.AlertTypeTrialEnding,
			fmt.Sprintf("%s trial ends %s", sub.Name, inDays(days))))
	}
	return out
}

func unusedSubscriptions(views []subscriptions.View) []View {
	var out []View
	for _, sub := range views {
		if sub.Status == enums.SubscriptionStatusCancelled || !sub.IsUnused() {
			continue
		}
		days := 0
		if sub.DaysSinceLastUse != nil {
			days = *sub.DaysSinceLastUse
		}
		out = append(out, computedView(sub, enums.AlertTypeUnused,
			fmt.Sprintf("%s hasn't been used in %d days", sub.Name, days)))
	}
	return out
}

// duplicates flags non-cancelled pairs whose case-folded names contain each
// other. One alert per pair, attached to the first subscription.
func duplicates(views []subscriptions.View) []View {
	var out []View
	for i := 0; i < len(views); i++ {
		if views[i].Status == enums.SubscriptionStatusCancelled {
			continue
		}
		a := strings.ToLower(strings.TrimSpace(views[i].Name))
		if a == "" {
			continue
		}
		for j := i + 1; j < len(views); j++ {
			if views[j].Status == enums.SubscriptionStatusCancelled {
				continue
			}
			b := strings.ToLower(strings.TrimSpace(views[j].Name))
			if b == "" {
				continue
			}
			if strings.Contains(a, b) || strings.Contains(b, a) {
				out = append(out, computedView(views[i], enums.AlertTypeDuplicate,
					fmt.Sprintf("%s and %s look like duplicates", views[i].Name, views[j].Name)))
			}
		}
	}
	return out
}

func computedView(sub subscriptions.View, alertType enums.AlertType, message string) View {
	return View{
		SubscriptionID:   sub.ID,
		SubscriptionName: sub.Name,
		Type:             alertType,
		Message:          message,
	}
}

func inDays(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "in 1 day"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
