// Package mailer 通过HTTP邮件API发送通知邮件。
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/retailorbit/smart-inventory/internal/config"
)

// Mailer 定义邮件发送接口
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// apiMailer 基于HTTP邮件API的实现
type apiMailer struct {
	baseURL   string
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

// New 创建邮件客户端
func New(cfg config.MailConfig) Mailer {
	return &apiMailer{
		baseURL:   cfg.APIBaseURL,
		apiKey:    cfg.APIKey,
		fromName:  cfg.FromName,
		fromEmail: cfg.FromEmail,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type sendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send 发送一封HTML邮件
func (m *apiMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload := sendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail),
		To:      []string{to},
		Subject: subject,
		HTML:    htmlBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/emails", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}
