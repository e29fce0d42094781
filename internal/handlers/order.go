package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/utils"
)

// OrderHandler serves customer order history and the admin back-office
// order operations.
type OrderHandler struct {
	db *gorm.DB
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

// ListMine returns the caller's orders, newest first, optionally
// filtered by status.
func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{}).Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetMine returns one of the caller's orders with its items.
func (h *OrderHandler) GetMine(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng.")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// Cancel lets a customer cancel an order that was not approved yet.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng.")
		}
		return err
	}

	if order.Status != models.OrderStatusPending {
		return fiber.NewError(fiber.StatusBadRequest, "Chỉ có thể hủy đơn hàng đang chờ xác nhận.")
	}

	if err := h.db.Model(&order).Update("status", models.OrderStatusCancelled).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Đã hủy đơn hàng.", "data": order})
}

// AdminList returns all orders, paginated, with optional status and
// search filters.
func (h *OrderHandler) AdminList(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		q := "%" + search + "%"
		query = query.Where("order_number ILIKE ? OR full_name ILIKE ? OR phone ILIKE ?", q, q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// AdminGet returns any order by id.
func (h *OrderHandler) AdminGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng.")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type updateOrderRequest struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusApproved:   true,
	models.OrderStatusProcessing: true,
	models.OrderStatusCompleted:  true,
	models.OrderStatusCancelled:  true,
}

// AdminUpdate moves an order through the fulfilment states.
func (h *OrderHandler) AdminUpdate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var order models.Order
	if err := h.db.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy đơn hàng.")
		}
		return err
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		if !validOrderStatuses[req.Status] {
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
		updates["status"] = req.Status
	}
	if req.PaymentStatus != "" {
		updates["payment_status"] = req.PaymentStatus
	}
	if len(updates) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "nothing to update")
	}

	if err := h.db.Model(&order).Updates(updates).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
