package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/vocdoni/ballotbox/election"
	"github.com/vocdoni/ballotbox/notifications"
	"github.com/vocdoni/ballotbox/notifications/mailtemplates"
	"go.vocdoni.io/dvote/log"
)

// alertSendTimeout bounds every outgoing alert send.
const alertSendTimeout = 10 * time.Second

// Alerter notifies the operator contact when the election starts or ends. It
// implements election.EventSink and ignores every other event kind. Emit only
// queues the event; composition and sending happen in the Start loop, after
// the commit that produced the event has finished. Alert failures are logged
// and swallowed.
type Alerter struct {
	ctx      context.Context
	election *election.Election
	mail     notifications.NotificationService
	mailTo   string
	sms      notifications.NotificationService
	smsTo    string
	pending  chan *election.Event
}

// NewAlerter creates an alerter. Either service may be nil; an alerter with
// no configured transport silently discards its alerts. Bind must be called
// before Start.
func NewAlerter(ctx context.Context,
	mailSrv notifications.NotificationService, mailTo string,
	smsSrv notifications.NotificationService, smsTo string,
) *Alerter {
	return &Alerter{
		ctx:     ctx,
		mail:    mailSrv,
		mailTo:  mailTo,
		sms:     smsSrv,
		smsTo:   smsTo,
		pending: make(chan *election.Event, 16),
	}
}

// Bind attaches the election whose state alert composition reads. The alerter
// is usually registered as a sink before the election exists, so binding is a
// separate step; it must happen before Start.
func (a *Alerter) Bind(elec *election.Election) {
	a.election = elec
}

// Emit implements election.EventSink. Lifecycle events are queued for the
// alert loop; everything else is ignored.
func (a *Alerter) Emit(ev *election.Event) error {
	switch ev.Kind {
	case election.EventElectionStarted, election.EventElectionEnded:
	default:
		return nil
	}
	select {
	case a.pending <- ev:
	default:
		log.Warnw("alert queue full, alert dropped", "seq", ev.Seq, "kind", string(ev.Kind))
	}
	return nil
}

// Start runs the alert loop until the context is canceled.
func (a *Alerter) Start() {
	for {
		select {
		case <-a.ctx.Done():
			return
		case ev := <-a.pending:
			a.alert(ev)
		}
	}
}

// alert composes the notification for the event and sends it through every
// configured transport. A transport failure does not stop the others.
func (a *Alerter) alert(ev *election.Event) {
	if a.election == nil {
		log.Warnw("alerter not bound to an election, alert dropped", "kind", string(ev.Kind))
		return
	}
	n, err := a.compose(ev)
	if err != nil {
		log.Warnw("could not compose alert", "kind", string(ev.Kind), "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(a.ctx, alertSendTimeout)
	defer cancel()
	if a.mail != nil && a.mailTo != "" {
		mail := *n
		mail.ToAddress = a.mailTo
		if err := a.mail.SendNotification(ctx, &mail); err != nil {
			log.Warnw("could not send alert email", "to", a.mailTo, "error", err)
		}
	}
	if a.sms != nil && a.smsTo != "" {
		sms := *n
		sms.ToNumber = a.smsTo
		// SMS carries the plain text version
		sms.Body = sms.PlainBody
		if err := a.sms.SendNotification(ctx, &sms); err != nil {
			log.Warnw("could not send alert SMS", "to", a.smsTo, "error", err)
		}
	}
}

// compose builds the alert notification from the event and the current
// election state.
func (a *Alerter) compose(ev *election.Event) (*notifications.Notification, error) {
	switch ev.Kind {
	case election.EventElectionStarted:
		return mailtemplates.ElectionStartedNotification.ExecTemplate(struct {
			Title       string
			Epoch       uint64
			ChoiceCount int
			VoterCount  int
			StartedAt   string
		}{
			Title:       a.election.PollTitle(),
			Epoch:       ev.Epoch,
			ChoiceCount: a.election.ChoiceCount(),
			VoterCount:  a.election.MemberCount(),
			StartedAt:   ev.Timestamp.Format(time.RFC3339),
		})
	case election.EventElectionEnded:
		winner := a.election.Winner()
		var result string
		switch {
		case !winner.HasWinner:
			result = "The round ended with no choices on the ballot."
		case winner.HasTie:
			result = fmt.Sprintf("The round ended in a draw at %d votes.", winner.Votes)
		default:
			result = fmt.Sprintf("Winner: %q with %d votes.", winner.Label, winner.Votes)
		}
		return mailtemplates.ElectionEndedNotification.ExecTemplate(struct {
			Title   string
			Epoch   uint64
			Result  string
			EndedAt string
		}{
			Title:   a.election.PollTitle(),
			Epoch:   ev.Epoch,
			Result:  result,
			EndedAt: ev.Timestamp.Format(time.RFC3339),
		})
	default:
		return nil, fmt.Errorf("no alert for event kind %q", ev.Kind)
	}
}
