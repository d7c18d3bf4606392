package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/mq"
)

func TestNotifierService_HandleSaleCompleted(t *testing.T) {
	newEvent := func(email *string) *mq.SaleCompletedEvent {
		return &mq.SaleCompletedEvent{
			SaleID:        42,
			CustomerName:  "Ari",
			CustomerEmail: email,
			TotalAmount:   dec("32.00"),
			OccurredAt:    time.Now(),
		}
	}

	t.Run("sends and records sent", func(t *testing.T) {
		m := &mockMailer{}
		logRepo := newMockEmailLogRepository()
		service := NewNotifierService(m, logRepo, nil, zap.NewNop())

		if err := service.HandleSaleCompleted(context.Background(), newEvent(strPtr("ari@example.com"))); err != nil {
			t.Fatalf("HandleSaleCompleted() error = %v", err)
		}
		if len(m.sent) != 1 {
			t.Fatalf("sent %d mails, want 1", len(m.sent))
		}
		if m.sent[0].to != "ari@example.com" {
			t.Errorf("recipient = %v, want ari@example.com", m.sent[0].to)
		}

		logs, _ := logRepo.ListBySale(42)
		if len(logs) != 1 || logs[0].Status != domain.EmailStatusSent {
			t.Errorf("logs = %+v, want single sent record", logs)
		}
	})

	t.Run("no email records skipped", func(t *testing.T) {
		m := &mockMailer{}
		logRepo := newMockEmailLogRepository()
		service := NewNotifierService(m, logRepo, nil, zap.NewNop())

		if err := service.HandleSaleCompleted(context.Background(), newEvent(nil)); err != nil {
			t.Fatalf("HandleSaleCompleted() error = %v", err)
		}
		if len(m.sent) != 0 {
			t.Errorf("sent %d mails for walk-in, want 0", len(m.sent))
		}
		logs, _ := logRepo.ListBySale(42)
		if len(logs) != 1 || logs[0].Status != domain.EmailStatusSkipped {
			t.Errorf("logs = %+v, want single skipped record", logs)
		}
	})

	t.Run("send failure records failed and returns error", func(t *testing.T) {
		m := &mockMailer{err: errors.New("smtp timeout")}
		logRepo := newMockEmailLogRepository()
		service := NewNotifierService(m, logRepo, nil, zap.NewNop())

		err := service.HandleSaleCompleted(context.Background(), newEvent(strPtr("ari@example.com")))
		if err == nil {
			t.Fatalf("HandleSaleCompleted() error = nil, want send failure")
		}
		logs, _ := logRepo.ListBySale(42)
		if len(logs) != 1 || logs[0].Status != domain.EmailStatusFailed {
			t.Fatalf("logs = %+v, want single failed record", logs)
		}
		if logs[0].ErrorMessage == nil || *logs[0].ErrorMessage == "" {
			t.Errorf("failed record missing error message")
		}
	})
}

func TestNotifierService_TriggerFeedbackEmail(t *testing.T) {
	productRepo := newMockProductRepository()
	stockRepo := newMockStockRepository(productRepo)
	saleRepo := newMockSaleRepository(productRepo, stockRepo)

	coffee := &domain.Product{Name: "Coffee", Price: dec("12.00"), CurrentStock: 10}
	if err := productRepo.Create(coffee); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}

	withEmail, err := saleRepo.CreateSale(&domain.CreateSaleRequest{
		CustomerName:  "Ari",
		CustomerEmail: strPtr("ari@example.com"),
		Items:         []domain.SaleItemRequest{{ProductID: coffee.ID, Quantity: 1, Price: dec("12.00")}},
	})
	if err != nil {
		t.Fatalf("failed to seed sale: %v", err)
	}
	walkIn, err := saleRepo.CreateSale(&domain.CreateSaleRequest{
		CustomerName: "Walk In",
		Items:        []domain.SaleItemRequest{{ProductID: coffee.ID, Quantity: 1, Price: dec("12.00")}},
	})
	if err != nil {
		t.Fatalf("failed to seed sale: %v", err)
	}

	m := &mockMailer{}
	logRepo := newMockEmailLogRepository()
	service := NewNotifierService(m, logRepo, saleRepo, zap.NewNop())

	t.Run("resends for sale with email", func(t *testing.T) {
		if err := service.TriggerFeedbackEmail(context.Background(), withEmail.SaleID); err != nil {
			t.Fatalf("TriggerFeedbackEmail() error = %v", err)
		}
		if len(m.sent) != 1 {
			t.Errorf("sent %d mails, want 1", len(m.sent))
		}
	})

	t.Run("sale without email rejected", func(t *testing.T) {
		err := service.TriggerFeedbackEmail(context.Background(), walkIn.SaleID)
		if !apperror.IsKind(err, apperror.KindInvalidOperation) {
			t.Errorf("TriggerFeedbackEmail() error = %v, want invalid operation", err)
		}
	})

	t.Run("unknown sale", func(t *testing.T) {
		err := service.TriggerFeedbackEmail(context.Background(), 9999)
		if !apperror.IsKind(err, apperror.KindNotFound) {
			t.Errorf("TriggerFeedbackEmail() error = %v, want not found", err)
		}
	})

	t.Run("mailer disabled", func(t *testing.T) {
		disabled := NewNotifierService(nil, logRepo, saleRepo, zap.NewNop())
		err := disabled.TriggerFeedbackEmail(context.Background(), withEmail.SaleID)
		if !apperror.IsKind(err, apperror.KindInvalidOperation) {
			t.Errorf("TriggerFeedbackEmail() error = %v, want invalid operation", err)
		}
	})
}
