package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/utils"
)

// FeedbackHandler manages customer feedback and admin responses.
type FeedbackHandler struct {
	db *gorm.DB
}

// NewFeedbackHandler constructs FeedbackHandler.
func NewFeedbackHandler(db *gorm.DB) *FeedbackHandler {
	return &FeedbackHandler{db: db}
}

type createFeedbackRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Create submits a feedback message.
func (h *FeedbackHandler) Create(c *fiber.Ctx) error {
	var req createFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập tiêu đề và nội dung.")
	}

	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	feedback := models.Feedback{
		UserID:  userID,
		Title:   strings.TrimSpace(req.Title),
		Content: strings.TrimSpace(req.Content),
	}
	if err := h.db.Create(&feedback).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Cảm ơn bạn đã gửi phản hồi!",
		"data":    feedback,
	})
}

// ListMine returns the caller's feedback history.
func (h *FeedbackHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	var feedbacks []models.Feedback
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&feedbacks).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": feedbacks})
}

// AdminList returns all feedback, unanswered first.
func (h *FeedbackHandler) AdminList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Feedback{}).Count(&total).Error; err != nil {
		return err
	}

	var feedbacks []models.Feedback
	if err := h.db.Preload("User").
		Order("responded_at IS NULL desc, created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&feedbacks).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    feedbacks,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

type respondFeedbackRequest struct {
	Response string `json:"response"`
}

// AdminRespond records the admin's answer to a feedback.
func (h *FeedbackHandler) AdminRespond(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req respondFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Response) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập nội dung phản hồi.")
	}

	var feedback models.Feedback
	if err := h.db.First(&feedback, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy phản hồi.")
		}
		return err
	}

	now := time.Now()
	if err := h.db.Model(&feedback).Updates(map[string]interface{}{
		"admin_response": strings.TrimSpace(req.Response),
		"responded_at":   now,
	}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": feedback})
}
