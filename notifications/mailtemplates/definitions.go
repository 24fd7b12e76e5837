// Package mailtemplates provides the predefined operator alert emails and the
// utilities for rendering their content from the embedded HTML assets.
package mailtemplates

import "github.com/vocdoni/ballotbox/notifications"

// ElectionStartedNotification is the alert to be sent to the operator contact
// when a new voting round opens.
var ElectionStartedNotification = MailTemplate{
	File: "election_started",
	Placeholder: notifications.Notification{
		Subject: "Ballot box: voting round open",
		PlainBody: `Voting round {{.Epoch}} of "{{.Title}}" is now open.

Choices on the ballot: {{.ChoiceCount}}
Whitelisted voters: {{.VoterCount}}
Opened at: {{.StartedAt}}`,
	},
}

// ElectionEndedNotification is the alert to be sent to the operator contact
// when the current voting round closes.
var ElectionEndedNotification = MailTemplate{
	File: "election_ended",
	Placeholder: notifications.Notification{
		Subject: "Ballot box: voting round closed",
		PlainBody: `Voting round {{.Epoch}} of "{{.Title}}" has closed.

{{.Result}}
Closed at: {{.EndedAt}}`,
	},
}
