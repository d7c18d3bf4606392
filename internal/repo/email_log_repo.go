package repo

import (
	"database/sql"
	"fmt"

	"github.com/retailorbit/smart-inventory/internal/domain"
)

// EmailLogRepository 定义邮件日志数据访问接口。
type EmailLogRepository interface {
	Create(log *domain.EmailLog) error
	ListBySale(saleID int64) ([]domain.EmailLog, error)
}

type emailLogRepo struct {
	db *sql.DB
}

// NewEmailLogRepository 创建邮件日志仓储实例。
func NewEmailLogRepository(db *sql.DB) EmailLogRepository {
	return &emailLogRepo{db: db}
}

func (r *emailLogRepo) Create(log *domain.EmailLog) error {
	res, err := r.db.Exec(
		`INSERT INTO email_logs (sale_id, recipient_email, subject, status, error_message) VALUES (?, ?, ?, ?, ?)`,
		log.SaleID, log.Recipient, log.Subject, string(log.Status), log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get email log id: %w", err)
	}
	log.ID = id
	return nil
}

func (r *emailLogRepo) ListBySale(saleID int64) ([]domain.EmailLog, error) {
	rows, err := r.db.Query(
		`SELECT id, sale_id, recipient_email, subject, status, error_message, sent_at
		 FROM email_logs WHERE sale_id = ? ORDER BY sent_at DESC, id DESC`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query email logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.EmailLog
	for rows.Next() {
		var l domain.EmailLog
		if err := rows.Scan(&l.ID, &l.SaleID, &l.Recipient, &l.Subject, &l.Status, &l.ErrorMessage, &l.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan email log: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate email logs: %w", err)
	}
	return logs, nil
}
