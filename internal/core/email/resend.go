package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/suiscan-ai/suiscan/internal/core"
	"github.com/suiscan-ai/suiscan/internal/models"
)

// ResendSender delivers transactional email through Resend.
type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

func (s *ResendSender) SendWelcome(ctx context.Context, to, name string, method string) error {
	greeting := "Welcome"
	if name != "" {
		greeting = "Hi " + name
	}
	via := "wallet connection"
	if method == string(models.AuthMethodZkLogin) {
		via = "Google Sign-In"
	}

	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2 style="color: #6fbcf0;">SUIscan AI</h2>
		  <h3>%s!</h3>
		  <p>Thanks for signing up via %s. Paste any Sui transaction digest and get an
		  instant plain-language explanation, ask follow-up questions, and monitor your
		  wallets for new activity.</p>
		  <a href="https://suiscan.ai" style="display: inline-block; margin-top: 16px; padding: 12px 24px; background: #6fbcf0; color: white; text-decoration: none; border-radius: 8px;">Start Exploring</a>
		</div>`, greeting, via)

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "Welcome to SUIscan AI",
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	return nil
}

func (s *ResendSender) SendTransactionAlert(ctx context.Context, to, digest, txType, walletName string) error {
	html := fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
		  <h2 style="color: #6fbcf0;">Transaction Alert</h2>
		  <p>A new <strong>%s</strong> was detected on your monitored wallet <strong>%s</strong>.</p>
		  <p><strong>Transaction ID:</strong><br/><code>%s</code></p>
		  <a href="https://suiscan.ai?tx=%s" style="display: inline-block; margin-top: 16px; padding: 12px 24px; background: #6fbcf0; color: white; text-decoration: none; border-radius: 8px;">View Details</a>
		</div>`, txType, walletName, digest, digest)

	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: fmt.Sprintf("New %s detected on %s", txType, walletName),
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send transaction alert: %w", err)
	}
	return nil
}

var _ core.EmailSender = (*ResendSender)(nil)
