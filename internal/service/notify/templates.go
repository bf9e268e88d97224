package notify

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"estatehub/internal/model"
)

// MessageData carries the fields the per-type message templates interpolate.
type MessageData struct {
	ActorName   string
	ProjectName string
	EntityTitle string
	Amount      float64
	Currency    string
}

// RenderMessage renders the in-app message for a notification type. Unknown
// types fall through to a fixed literal rather than interpolating into a
// half-empty template.
func RenderMessage(notifType string, d MessageData) string {
	switch notifType {
	case model.NotifTypeCostAdded:
		return fmt.Sprintf("%s added a cost to %s: %s (%s)",
			d.ActorName, d.ProjectName, d.EntityTitle, formatAmount(d.Amount, d.Currency))
	case model.NotifTypeLargeExpense:
		return fmt.Sprintf("Large expense in %s: %s (%s)",
			d.ProjectName, d.EntityTitle, formatAmount(d.Amount, d.Currency))
	case model.NotifTypeDocumentUploaded:
		return fmt.Sprintf("%s uploaded %s to %s", d.ActorName, d.EntityTitle, d.ProjectName)
	case model.NotifTypeTimelineEvent:
		return fmt.Sprintf("%s added a timeline event to %s: %s", d.ActorName, d.ProjectName, d.EntityTitle)
	case model.NotifTypePartnerInvited:
		return fmt.Sprintf("%s invited you to partner on %s", d.ActorName, d.ProjectName)
	case model.NotifTypeCommentAdded:
		// Comment triggers do not always know the entity's own title; the
		// project name is the fallback target.
		target := d.EntityTitle
		if target == "" {
			target = d.ProjectName
		}
		return fmt.Sprintf("%s commented on %s", d.ActorName, target)
	default:
		return "New activity"
	}
}

// formatAmount renders an amount with its currency symbol, falling back to
// USD when the project carries an unknown ISO code.
func formatAmount(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	p := message.NewPrinter(language.English)
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}
