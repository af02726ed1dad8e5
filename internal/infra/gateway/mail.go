package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Mail is one outbound message for the provider's send API.
type Mail struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// MailClient speaks the mail provider's HTTP send API.
type MailClient struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

func NewMailClient(endpoint, apiKey, from string) *MailClient {
	return &MailClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		from:     from,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func (c *MailClient) Send(ctx context.Context, mail Mail) error {
	body, err := json.Marshal(sendRequest{
		From:    c.from,
		To:      []string{mail.To},
		Subject: mail.Subject,
		HTML:    mail.HTML,
		ReplyTo: mail.ReplyTo,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
