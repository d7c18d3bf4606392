package repo

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/retailorbit/smart-inventory/internal/domain"
)

// FeedbackRepository 定义售后反馈数据访问接口。
type FeedbackRepository interface {
	// Upsert 在单个事务中写入整单反馈及明细评分:
	// 反馈按 sale_id 幂等,明细评分按 sale_item_id 幂等,
	// 同时镜像到 product_ratings 供商品维度聚合。
	// 不属于该销售单的 sale_item_id 被静默跳过。
	Upsert(req *domain.SubmitFeedbackRequest) (int64, error)
	// GetBySaleID 查询整单反馈,不存在时返回 (nil, nil)。
	GetBySaleID(saleID int64) (*domain.Feedback, error)
	// ListItemFeedback 查询销售单全部明细的评分,键为 sale_item_id。
	ListItemFeedback(saleID int64) (map[int64]*domain.SaleItemFeedback, error)
	// ListProductRatings 查询商品的镜像评分(联表销售单 ID)。
	ListProductRatings(productID int64) ([]*domain.ProductRating, error)
	// ListProductItemFeedback 查询商品全部明细评分。
	ListProductItemFeedback(productID int64) ([]*domain.SaleItemFeedback, error)
	// ProductRatingStats 基于 product_ratings 镜像计算商品均分与评分数。
	ProductRatingStats(productID int64) (avg *float64, count int, err error)
}

// feedbackRepo 基于 MySQL 的 FeedbackRepository 实现。
type feedbackRepo struct {
	db *sql.DB
}

// NewFeedbackRepository 创建反馈仓储实例。
func NewFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Upsert(req *domain.SubmitFeedbackRequest) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 整单反馈按 sale_id 幂等:重复提交覆盖评分与评语。
	if _, err := tx.Exec(
		`INSERT INTO feedback (sale_id, overall_rating, comment) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE overall_rating = VALUES(overall_rating), comment = VALUES(comment)`,
		req.SaleID, req.OverallRating, req.OverallComment,
	); err != nil {
		return 0, fmt.Errorf("failed to upsert feedback: %w", err)
	}

	var feedbackID int64
	if err := tx.QueryRow(`SELECT id FROM feedback WHERE sale_id = ?`, req.SaleID).Scan(&feedbackID); err != nil {
		return 0, fmt.Errorf("failed to query feedback id: %w", err)
	}

	for _, item := range req.ItemFeedback {
		// 校验明细归属,越界的 sale_item_id 直接跳过。
		var productID int64
		err := tx.QueryRow(
			`SELECT product_id FROM sale_items WHERE id = ? AND sale_id = ?`,
			item.SaleItemID, req.SaleID,
		).Scan(&productID)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to verify sale item: %w", err)
		}

		if _, err := tx.Exec(
			`INSERT INTO sale_item_feedback (sale_item_id, rating, comment) VALUES (?, ?, ?)
			 ON DUPLICATE KEY UPDATE rating = VALUES(rating), comment = VALUES(comment)`,
			item.SaleItemID, item.Rating, item.Comment,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert sale item feedback: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO product_ratings (feedback_id, product_id, rating, comment) VALUES (?, ?, ?, ?)
			 ON DUPLICATE KEY UPDATE rating = VALUES(rating), comment = VALUES(comment)`,
			feedbackID, productID, item.Rating, item.Comment,
		); err != nil {
			return 0, fmt.Errorf("failed to upsert product rating: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return feedbackID, nil
}

func (r *feedbackRepo) GetBySaleID(saleID int64) (*domain.Feedback, error) {
	var f domain.Feedback
	err := r.db.QueryRow(
		`SELECT id, sale_id, overall_rating, comment, created_at FROM feedback WHERE sale_id = ?`,
		saleID,
	).Scan(&f.ID, &f.SaleID, &f.OverallRating, &f.Comment, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	return &f, nil
}

func (r *feedbackRepo) ListItemFeedback(saleID int64) (map[int64]*domain.SaleItemFeedback, error) {
	rows, err := r.db.Query(
		`SELECT sif.id, sif.sale_item_id, sif.rating, sif.comment, sif.created_at
		 FROM sale_item_feedback sif JOIN sale_items si ON si.id = sif.sale_item_id
		 WHERE si.sale_id = ?`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query item feedback: %w", err)
	}
	defer rows.Close()

	result := make(map[int64]*domain.SaleItemFeedback)
	for rows.Next() {
		var f domain.SaleItemFeedback
		if err := rows.Scan(&f.ID, &f.SaleItemID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item feedback: %w", err)
		}
		result[f.SaleItemID] = &f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item feedback: %w", err)
	}
	return result, nil
}

func (r *feedbackRepo) ListProductRatings(productID int64) ([]*domain.ProductRating, error) {
	rows, err := r.db.Query(
		`SELECT pr.id, pr.feedback_id, pr.product_id, pr.rating, pr.comment, f.sale_id, pr.created_at
		 FROM product_ratings pr JOIN feedback f ON f.id = pr.feedback_id
		 WHERE pr.product_id = ? ORDER BY pr.created_at DESC, pr.id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query product ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*domain.ProductRating
	for rows.Next() {
		var pr domain.ProductRating
		if err := rows.Scan(&pr.ID, &pr.FeedbackID, &pr.ProductID, &pr.Rating, &pr.Comment, &pr.SaleID, &pr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product rating: %w", err)
		}
		ratings = append(ratings, &pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product ratings: %w", err)
	}
	return ratings, nil
}

func (r *feedbackRepo) ListProductItemFeedback(productID int64) ([]*domain.SaleItemFeedback, error) {
	rows, err := r.db.Query(
		`SELECT sif.id, sif.sale_item_id, sif.rating, sif.comment, sif.created_at
		 FROM sale_item_feedback sif JOIN sale_items si ON si.id = sif.sale_item_id
		 WHERE si.product_id = ? ORDER BY sif.created_at DESC, sif.id DESC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query product item feedback: %w", err)
	}
	defer rows.Close()

	var feedback []*domain.SaleItemFeedback
	for rows.Next() {
		var f domain.SaleItemFeedback
		if err := rows.Scan(&f.ID, &f.SaleItemID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product item feedback: %w", err)
		}
		feedback = append(feedback, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product item feedback: %w", err)
	}
	return feedback, nil
}

func (r *feedbackRepo) ProductRatingStats(productID int64) (*float64, int, error) {
	var avg sql.NullFloat64
	var count int
	err := r.db.QueryRow(
		`SELECT AVG(rating), COUNT(*) FROM product_ratings WHERE product_id = ?`,
		productID,
	).Scan(&avg, &count)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query product rating stats: %w", err)
	}
	if !avg.Valid {
		return nil, count, nil
	}
	return &avg.Float64, count, nil
}
