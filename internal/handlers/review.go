package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/utils"
)

// ReviewHandler manages product reviews.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

type createReviewRequest struct {
	ProductID   string `json:"product_id"`
	Comment     string `json:"comment"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// Create posts a review. Only buyers with a completed, not yet reviewed
// order item for the product may review, once per product. Each review
// consumes one order item's review entitlement.
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var req createReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	if strings.TrimSpace(req.Comment) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập nội dung đánh giá.")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	var review models.Review
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("user_id = ? AND product_id = ?", user.ID, productID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bạn đã đánh giá sản phẩm này rồi.")
		}

		var item models.OrderItem
		err := tx.Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.user_id = ? AND orders.status = ?", user.ID, models.OrderStatusCompleted).
			Where("order_items.product_id = ? AND order_items.is_reviewed = ?", productID, false).
			Order("order_items.created_at asc").
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusForbidden,
					"Bạn cần mua và nhận sản phẩm trước khi đánh giá.")
			}
			return err
		}

		review = models.Review{
			ProductID:   productID,
			UserID:      user.ID,
			Comment:     strings.TrimSpace(req.Comment),
			IsAnonymous: req.IsAnonymous,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}

		return tx.Model(&item).Update("is_reviewed", true).Error
	})
	if err != nil {
		return err
	}

	review.User = user
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Cảm ơn bạn đã đánh giá sản phẩm!",
		"data": fiber.Map{
			"id":           review.ID,
			"comment":      review.Comment,
			"is_anonymous": review.IsAnonymous,
			"display_name": review.DisplayName(),
			"created_at":   review.CreatedAt,
		},
	})
}

// AdminList returns all reviews, newest first.
func (h *ReviewHandler) AdminList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Review{}).Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := h.db.Preload("User").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    reviews,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// AdminDelete removes a review.
func (h *ReviewHandler) AdminDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Review{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
