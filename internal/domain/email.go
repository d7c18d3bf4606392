// Package domain 定义通知邮件相关的领域模型。
package domain

import (
	"time"
)

// EmailStatus 邮件发送结果。
type EmailStatus string

const (
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
	EmailStatusSkipped EmailStatus = "skipped"
)

// EmailLog 记录一次通知邮件的发送结果。
// 发送失败只留痕，不影响已提交的业务数据。
type EmailLog struct {
	ID           int64       `json:"id"`
	SaleID       *int64      `json:"sale_id"`
	Recipient    string      `json:"recipient_email"`
	Subject      string      `json:"subject"`
	Status       EmailStatus `json:"status"`
	ErrorMessage *string     `json:"error_message"`
	SentAt       time.Time   `json:"sent_at"`
}
