package email

import (
	"fmt"

	"estatehub/internal/model"
	"estatehub/internal/mq"
)

// renderEmail builds the subject and HTML body for one notification email.
// Template extras travel in the payload's Data map so the worker never
// re-queries the source rows.
func renderEmail(p mq.NotificationCreatedPayload, user *model.User, unsubToken string) (string, string) {
	project := p.Data["project_name"]
	if project == "" {
		project = "your project"
	}

	var subject string
	switch p.Type {
	case model.NotifTypeCostAdded:
		subject = fmt.Sprintf("New cost in %s", project)
	case model.NotifTypeLargeExpense:
		subject = fmt.Sprintf("Large expense alert for %s", project)
	case model.NotifTypeDocumentUploaded:
		subject = fmt.Sprintf("New document in %s", project)
	case model.NotifTypeTimelineEvent:
		subject = fmt.Sprintf("Timeline update for %s", project)
	default:
		subject = fmt.Sprintf("New activity in %s", project)
	}

	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>%s</p>
<p><a href="https://app.estatehub.io/projects">Open the project</a></p>
<p style="color:#888;font-size:12px">
  <a href="https://app.estatehub.io/unsubscribe?token=%s">Unsubscribe from these emails</a>
</p>`,
		user.DisplayName,
		p.Message,
		unsubToken,
	)

	return subject, html
}

// RenderDigest builds one batched email for a user's due digest entries.
func RenderDigest(user *model.User, digestType string, messages []string, unsubToken string) (string, string) {
	subject := "Your daily project digest"
	if digestType == model.DigestWeekly {
		subject = "Your weekly project digest"
	}

	items := ""
	for _, m := range messages {
		items += fmt.Sprintf("<li>%s</li>\n", m)
	}

	html := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Here is what happened since your last digest:</p>
<ul>
%s</ul>
<p style="color:#888;font-size:12px">
  <a href="https://app.estatehub.io/unsubscribe?token=%s">Unsubscribe from these emails</a>
</p>`,
		user.DisplayName,
		items,
		unsubToken,
	)

	return subject, html
}
