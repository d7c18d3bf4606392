package service

import (
	"github.com/retailorbit/smart-inventory/internal/apperror"
	"github.com/retailorbit/smart-inventory/internal/domain"
	"github.com/retailorbit/smart-inventory/internal/repo"
)

// FeedbackService 定义售后反馈业务逻辑接口。
type FeedbackService interface {
	// SubmitFeedback 提交整单反馈,重复提交幂等覆盖。
	SubmitFeedback(req *domain.SubmitFeedbackRequest) (int64, error)
	// GetSaleFeedback 查询销售单反馈视图。
	GetSaleFeedback(saleID int64) (*domain.SaleFeedbackView, error)
	// GetProductFeedback 查询商品维度反馈汇总。
	GetProductFeedback(productID int64) (*domain.ProductFeedbackSummary, error)
}

// feedbackService 实现FeedbackService接口
type feedbackService struct {
	feedbackRepo repo.FeedbackRepository
	saleRepo     repo.SaleRepository
	productRepo  repo.ProductRepository
}

// NewFeedbackService 创建反馈服务实例
func NewFeedbackService(feedbackRepo repo.FeedbackRepository, saleRepo repo.SaleRepository, productRepo repo.ProductRepository) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		saleRepo:     saleRepo,
		productRepo:  productRepo,
	}
}

func ratingValid(rating int) bool {
	return rating >= 1 && rating <= 5
}

// SubmitFeedback 提交反馈
func (s *feedbackService) SubmitFeedback(req *domain.SubmitFeedbackRequest) (int64, error) {
	if !ratingValid(req.OverallRating) {
		return 0, apperror.InvalidArgument("overall rating must be between 1 and 5")
	}
	for _, item := range req.ItemFeedback {
		if !ratingValid(item.Rating) {
			return 0, apperror.InvalidArgument("item rating must be between 1 and 5")
		}
	}

	sale, err := s.saleRepo.GetByID(req.SaleID)
	if err != nil {
		return 0, apperror.Internal(err, "failed to get sale")
	}
	if sale == nil {
		return 0, apperror.NotFound("sale %d not found", req.SaleID)
	}

	feedbackID, err := s.feedbackRepo.Upsert(req)
	if err != nil {
		return 0, apperror.Internal(err, "failed to save feedback")
	}
	return feedbackID, nil
}

// GetSaleFeedback 查询销售单反馈
func (s *feedbackService) GetSaleFeedback(saleID int64) (*domain.SaleFeedbackView, error) {
	sale, err := s.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get sale")
	}
	if sale == nil {
		return nil, apperror.NotFound("sale %d not found", saleID)
	}

	items, err := s.saleRepo.ListItems(saleID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list sale items")
	}

	feedback, err := s.feedbackRepo.GetBySaleID(saleID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get feedback")
	}
	itemFeedback, err := s.feedbackRepo.ListItemFeedback(saleID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list item feedback")
	}

	view := &domain.SaleFeedbackView{Sale: sale}
	if feedback != nil {
		view.FeedbackID = &feedback.ID
		view.OverallRating = &feedback.OverallRating
		view.OverallComment = &feedback.Comment
	}
	for _, it := range items {
		row := &domain.SaleItemWithFeedback{SaleItem: it}
		if f, ok := itemFeedback[it.ID]; ok {
			row.Rating = &f.Rating
			row.Comment = &f.Comment
		}
		view.Items = append(view.Items, row)
	}
	return view, nil
}

// GetProductFeedback 查询商品反馈汇总。
// 两个评分来源都原样列出,但均值只按product_ratings镜像计算,
// 同一条逻辑评分不会被重复计入。
func (s *feedbackService) GetProductFeedback(productID int64) (*domain.ProductFeedbackSummary, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to get product")
	}
	if product == nil {
		return nil, apperror.NotFound("product %d not found", productID)
	}

	ratings, err := s.feedbackRepo.ListProductRatings(productID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list product ratings")
	}
	itemFeedback, err := s.feedbackRepo.ListProductItemFeedback(productID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to list product item feedback")
	}
	avg, count, err := s.feedbackRepo.ProductRatingStats(productID)
	if err != nil {
		return nil, apperror.Internal(err, "failed to compute product rating stats")
	}

	return &domain.ProductFeedbackSummary{
		ProductID:      productID,
		ProductRatings: ratings,
		ItemFeedback:   itemFeedback,
		AverageRating:  avg,
		RatingCount:    count,
	}, nil
}
