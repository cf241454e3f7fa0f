package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/logger"
)

const timeLayout = "2006-01-02 15:04 MST"

type sendFunc func(message *mail.SGMailV3) (status int, body string, err error)

type sendGridNotifier struct {
	fromEmail string
	fromName  string
	send      sendFunc
}

func NewSendGridNotifier(apiKey, fromEmail, fromName string) Notifier {
	client := sendgrid.NewSendClient(apiKey)
	return &sendGridNotifier{
		fromEmail: fromEmail,
		fromName:  fromName,
		send: func(message *mail.SGMailV3) (int, string, error) {
			resp, err := client.Send(message)
			if err != nil {
				return 0, "", err
			}
			return resp.StatusCode, resp.Body, nil
		},
	}
}

func (n *sendGridNotifier) sendEmail(ctx context.Context, to, toName, subject, plainText, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := mail.NewEmail(n.fromName, n.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, html)

	logger.ExternalServiceCall("sendgrid", "Send", "to", to, "subject", subject)
	status, body, err := n.send(message)
	if err == nil && status >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", status, body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (n *sendGridNotifier) SendPaymentReceipt(ctx context.Context, user *domain.User, payment *domain.Payment) error {
	subject := fmt.Sprintf("Parking receipt %s", payment.ID)
	plain := fmt.Sprintf("Hello %s,\n\nYour parking session on space %s from %s to %s has ended.\n"+
		"Amount due: %s (payment %s, status %s).\n\nSmart Parking",
		user.FullName(), payment.SpaceID,
		payment.StartTime.Format(timeLayout), payment.EndTime.Format(timeLayout),
		payment.Amount, payment.ID, payment.Status)
	html := fmt.Sprintf(`<html><body>
<h2>Parking receipt</h2>
<p>Space <strong>%s</strong>, %s to %s.</p>
<p>Amount due: <strong>%s</strong> (payment %s).</p>
</body></html>`,
		payment.SpaceID, payment.StartTime.Format(timeLayout), payment.EndTime.Format(timeLayout),
		payment.Amount, payment.ID)
	return n.sendEmail(ctx, user.Email, user.FullName(), subject, plain, html)
}

func (n *sendGridNotifier) SendPaymentReminder(ctx context.Context, user *domain.User, summary *domain.PaymentSummary) error {
	var lines []string
	for _, p := range summary.Pending {
		lines = append(lines, fmt.Sprintf("- %s: %s (space %s, %s)", p.ID, p.Amount, p.SpaceID, p.StartTime.Format(timeLayout)))
	}
	subject := fmt.Sprintf("You have %d unpaid parking payment(s)", len(summary.Pending))
	plain := fmt.Sprintf("Hello %s,\n\nThe following payments are pending:\n%s\n\nTotal due: %s\n\nSmart Parking",
		user.FullName(), strings.Join(lines, "\n"), summary.TotalDue)
	html := fmt.Sprintf("<html><body><h2>Pending parking payments</h2><pre>%s</pre><p>Total due: <strong>%s</strong></p></body></html>",
		strings.Join(lines, "\n"), summary.TotalDue)
	return n.sendEmail(ctx, user.Email, user.FullName(), subject, plain, html)
}
