package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"

	"github.com/pkg/errors"

	"github.com/civicsignal/petitiond/internal/domain"
	"github.com/civicsignal/petitiond/internal/infra/gateway"
	"github.com/civicsignal/petitiond/internal/metrics"
)

type MailSender interface {
	Send(ctx context.Context, mail gateway.Mail) error
}

// Notifier renders and dispatches the platform's transactional emails.
type Notifier struct {
	mailer  MailSender
	baseURL string
	logger  *slog.Logger
}

func NewNotifier(mailer MailSender, baseURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		mailer:  mailer,
		baseURL: baseURL,
		logger:  logger,
	}
}

// SendVerification delivers the single-use confirmation link to a fresh
// signer. Failure here is fatal to the signature submission, so the error is
// returned rather than swallowed.
func (n *Notifier) SendVerification(ctx context.Context, to, firstName, petitionTitle, token string) error {
	ctx, span := tracer.Start(ctx, "Notifier.Service.SendVerification")
	defer span.End()

	verifyURL := fmt.Sprintf("%s/verify?token=%s", n.baseURL, url.QueryEscape(token))
	title := html.EscapeString(petitionTitle)

	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify Your Signature</h2>
  <p>Hi %s,</p>
  <p>Thank you for signing <strong>"%s"</strong>!</p>
  <p>Please verify your signature by clicking the link below:</p>
  <p style="margin: 30px 0;"><a href="%s">Verify My Signature</a></p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="color: #666; font-size: 14px; word-break: break-all;">%s</p>
  <p style="color: #999; font-size: 12px;">If you didn't sign this petition, you can safely ignore this email.</p>
</div>`, html.EscapeString(firstName), title, verifyURL, verifyURL)

	err := n.mailer.Send(ctx, gateway.Mail{
		To:      to,
		Subject: fmt.Sprintf("Please verify your signature on %q", petitionTitle),
		HTML:    body,
	})
	if err != nil {
		metrics.EmailsSent.WithLabelValues("verification", "error").Inc()
		span.RecordError(err)
		return errors.Wrap(err, "failed to send verification email")
	}

	metrics.EmailsSent.WithLabelValues("verification", "ok").Inc()
	return nil
}

// BroadcastAnnouncement fans the announcement out to every verified signer in
// the background. A failed recipient is logged and skipped; it never blocks
// the rest of the batch or the caller.
func (n *Notifier) BroadcastAnnouncement(petition domain.Petition, announcementTitle string, recipients []domain.Recipient) {
	go func() {
		ctx := context.Background()
		for _, recipient := range recipients {
			err := n.sendAnnouncement(ctx, recipient, petition, announcementTitle)
			if err != nil {
				metrics.EmailsSent.WithLabelValues("announcement", "error").Inc()
				n.logger.Error("failed to send announcement email",
					slog.String("petition", petition.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			metrics.EmailsSent.WithLabelValues("announcement", "ok").Inc()
		}
	}()
}

func (n *Notifier) sendAnnouncement(ctx context.Context, recipient domain.Recipient, petition domain.Petition, announcementTitle string) error {
	petitionURL := fmt.Sprintf("%s/petition/%s", n.baseURL, petition.ID)

	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New Announcement</h2>
  <p>Hi %s,</p>
  <p>There's a new announcement on the petition <strong>"%s"</strong> that you signed:</p>
  <h3>%s</h3>
  <p style="margin: 30px 0;"><a href="%s">View Announcement</a></p>
  <p style="color: #999; font-size: 12px;">You're receiving this because you signed this petition.</p>
</div>`, html.EscapeString(recipient.FirstName), html.EscapeString(petition.Title), html.EscapeString(announcementTitle), petitionURL)

	return n.mailer.Send(ctx, gateway.Mail{
		To:      recipient.Email,
		Subject: fmt.Sprintf("New update on %q", petition.Title),
		HTML:    body,
	})
}

// SendContact relays a supporter's message to the petition organizer. The
// sender's address goes in Reply-To so the organizer can answer directly.
func (n *Notifier) SendContact(ctx context.Context, organizer domain.User, petition domain.Petition, msg domain.ContactMessage) error {
	ctx, span := tracer.Start(ctx, "Notifier.Service.SendContact")
	defer span.End()

	petitionURL := fmt.Sprintf("%s/petition/%s", n.baseURL, petition.ID)

	phoneRow := ""
	if msg.Phone != "" {
		phoneRow = fmt.Sprintf(`<p style="margin: 5px 0;"><strong>Phone:</strong> %s</p>`, html.EscapeString(msg.Phone))
	}

	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Message from a Supporter</h2>
  <p>Hi %s,</p>
  <p>You've received a message about your petition <strong>"%s"</strong>:</p>
  <div style="background-color: #f5f5f5; padding: 20px; margin: 30px 0;">
    <p style="margin: 0; white-space: pre-wrap;">%s</p>
  </div>
  <div style="margin: 30px 0; padding: 20px; background-color: #f9f9f9;">
    <h3 style="margin: 0 0 10px; font-size: 16px;">Contact Information:</h3>
    <p style="margin: 5px 0;"><strong>Name:</strong> %s %s</p>
    <p style="margin: 5px 0;"><strong>Email:</strong> %s</p>
    %s
  </div>
  <p style="margin: 30px 0;"><a href="%s">View Your Petition</a></p>
  <p style="color: #999; font-size: 12px;">You can reply directly to this email to respond to %s.</p>
</div>`,
		html.EscapeString(organizer.Name),
		html.EscapeString(petition.Title),
		html.EscapeString(msg.Message),
		html.EscapeString(msg.FirstName),
		html.EscapeString(msg.LastName),
		html.EscapeString(msg.Email),
		phoneRow,
		petitionURL,
		html.EscapeString(msg.FirstName),
	)

	err := n.mailer.Send(ctx, gateway.Mail{
		To:      organizer.Email,
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("Message about your petition: %q", petition.Title),
		HTML:    body,
	})
	if err != nil {
		metrics.EmailsSent.WithLabelValues("contact", "error").Inc()
		span.RecordError(err)
		return errors.Wrap(err, "failed to send contact email")
	}

	metrics.EmailsSent.WithLabelValues("contact", "ok").Inc()
	return nil
}
