// Package domain 定义售后反馈相关的业务领域模型。
package domain

import (
	"time"
)

// Feedback 表示销售单级别的整体反馈，每笔销售至多一条（按sale_id幂等更新）。
type Feedback struct {
	ID            int64     `json:"id"`
	SaleID        int64     `json:"sale_id"`
	OverallRating int       `json:"overall_rating"` // 1..5
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}

// SaleItemFeedback 表示单条销售明细的评分，每条明细至多一条。
type SaleItemFeedback struct {
	ID         int64     `json:"id"`
	SaleItemID int64     `json:"sale_item_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProductRating 表示镜像到商品维度的评分，按(feedback_id, product_id)幂等更新，
// 供商品分析聚合使用。
type ProductRating struct {
	ID         int64     `json:"id"`
	FeedbackID int64     `json:"feedback_id"`
	ProductID  int64     `json:"product_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	SaleID     int64     `json:"sale_id,omitempty"` // 查询时联表填充
	CreatedAt  time.Time `json:"created_at"`
}

// ItemFeedbackRequest 表示明细反馈请求体
type ItemFeedbackRequest struct {
	SaleItemID int64  `json:"sale_item_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

// SubmitFeedbackRequest 表示提交反馈请求
type SubmitFeedbackRequest struct {
	SaleID         int64                 `json:"sale_id" binding:"required"`
	OverallRating  int                   `json:"overall_rating" binding:"required,min=1,max=5"`
	OverallComment string                `json:"overall_comment"`
	ItemFeedback   []ItemFeedbackRequest `json:"item_feedback"`
}

// SaleItemWithFeedback 带评分的销售明细视图
type SaleItemWithFeedback struct {
	*SaleItem
	Rating  *int    `json:"rating"`
	Comment *string `json:"feedback_comment"`
}

// SaleFeedbackView 销售单反馈视图：整体评分加逐条明细评分。
type SaleFeedbackView struct {
	*Sale
	FeedbackID     *int64                  `json:"feedback_id"`
	OverallRating  *int                    `json:"overall_rating"`
	OverallComment *string                 `json:"overall_comment"`
	Items          []*SaleItemWithFeedback `json:"items"`
}

// ProductFeedbackSummary 商品维度的反馈汇总。
// 平均分只基于product_ratings镜像计算，sale_item_feedback仅原样列出，
// 避免同一条逻辑评分被两个来源重复计入。
type ProductFeedbackSummary struct {
	ProductID      int64               `json:"product_id"`
	ProductRatings []*ProductRating    `json:"product_ratings"`
	ItemFeedback   []*SaleItemFeedback `json:"item_feedback"`
	AverageRating  *float64            `json:"average_rating"`
	RatingCount    int                 `json:"rating_count"`
}
