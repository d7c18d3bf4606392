package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/mailer"
	"github.com/retailorbit/smart-inventory/internal/mq"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// NotifierService 消费销售完成事件并发送售后反馈邮件。
// 发送结果落入email_logs留痕;邮件失败不影响已提交的销售数据。
type NotifierService interface {
	HandleSaleCompleted(ctx context.Context, event *mq.SaleCompletedEvent) error
	// TriggerFeedbackEmail 后台手工补发某笔销售的反馈邮件。
	TriggerFeedbackEmail(ctx context.Context, saleID int64) error
}

// notifierService 实现NotifierService接口
type notifierService struct {
	mailer       mailer.Mailer
	emailLogRepo repo.EmailLogRepository
	saleRepo     repo.SaleRepository
	logger       *zap.Logger
}

// NewNotifierService 创建通知服务实例
func NewNotifierService(m mailer.Mailer, emailLogRepo repo.EmailLogRepository, saleRepo repo.SaleRepository, logger *zap.Logger) NotifierService {
	return &notifierService{
		mailer:       m,
		emailLogRepo: emailLogRepo,
		saleRepo:     saleRepo,
		logger:       logger,
	}
}

// HandleSaleCompleted 处理一条销售完成事件
func (s *notifierService) HandleSaleCompleted(ctx context.Context, event *mq.SaleCompletedEvent) error {
	subject := mailer.FeedbackRequestSubject(event.SaleID)

	if s.mailer == nil || event.CustomerEmail == nil || *event.CustomerEmail == "" {
		// 邮件未启用或无邮箱的散客,留痕后结束
		s.record(event.SaleID, "", subject, domain.EmailStatusSkipped, nil)
		return nil
	}

	recipient := *event.CustomerEmail
	body := mailer.FeedbackRequestBody(event.CustomerName, event.SaleID, event.TotalAmount)

	if err := s.mailer.Send(ctx, recipient, subject, body); err != nil {
		s.logger.Warn("failed to send feedback request email",
			zap.Int64("sale_id", event.SaleID), zap.Error(err))
		s.record(event.SaleID, recipient, subject, domain.EmailStatusFailed, err)
		return fmt.Errorf("send feedback request email: %w", err)
	}

	s.logger.Info("feedback request email sent",
		zap.Int64("sale_id", event.SaleID), zap.String("recipient", recipient))
	s.record(event.SaleID, recipient, subject, domain.EmailStatusSent, nil)
	return nil
}

// TriggerFeedbackEmail 手工补发反馈邮件
func (s *notifierService) TriggerFeedbackEmail(ctx context.Context, saleID int64) error {
	if s.mailer == nil {
		return apperror.InvalidOperation("mail notifications are disabled")
	}
	sale, err := s.saleRepo.GetByID(saleID)
	if err != nil {
		return apperror.Internal(err, "failed to get sale")
	}
	if sale == nil {
		return apperror.NotFound("sale %d not found", saleID)
	}
	if sale.CustomerEmail == nil || *sale.CustomerEmail == "" {
		return apperror.InvalidOperation("sale %d has no customer email", saleID)
	}

	event := &mq.SaleCompletedEvent{
		SaleID:        sale.ID,
		CustomerID:    sale.CustomerID,
		CustomerName:  sale.CustomerName,
		CustomerEmail: sale.CustomerEmail,
		TotalAmount:   sale.TotalAmount,
		OccurredAt:    sale.CreatedAt,
	}
	if err := s.HandleSaleCompleted(ctx, event); err != nil {
		return apperror.Internal(err, "failed to send feedback email")
	}
	return nil
}

func (s *notifierService) record(saleID int64, recipient, subject string, status domain.EmailStatus, sendErr error) {
	log := &domain.EmailLog{
		SaleID:    &saleID,
		Recipient: recipient,
		Subject:   subject,
		Status:    status,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		log.ErrorMessage = &msg
	}
	if err := s.emailLogRepo.Create(log); err != nil {
		s.logger.Error("failed to record email log",
			zap.Int64("sale_id", saleID), zap.Error(err))
	}
}
