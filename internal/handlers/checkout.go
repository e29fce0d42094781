package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/services"
	"github.com/example/phoneshop/internal/utils"
)

// CheckoutHandler exposes the checkout summary and order placement.
type CheckoutHandler struct {
	db       *gorm.DB
	checkout *services.CheckoutService
	telegram *services.TelegramService
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(db *gorm.DB, checkout *services.CheckoutService, telegram *services.TelegramService) *CheckoutHandler {
	return &CheckoutHandler{db: db, checkout: checkout, telegram: telegram}
}

// Summary returns the recomputed selection, discount and total for the
// confirmation page, along with the user's default shipping address.
func (h *CheckoutHandler) Summary(c *fiber.Ctx) error {
	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	cart, err := h.checkout.ResolveCart(cartOwner(c))
	if err != nil {
		return checkoutError(err)
	}

	summary, err := h.checkout.Summarize(user, cart)
	if err != nil {
		return checkoutError(err)
	}

	data := fiber.Map{
		"items":            summary.Items,
		"subtotal":         summary.Subtotal,
		"subtotal_display": utils.FormatVND(summary.Subtotal),
		"discount":         summary.DiscountAmount,
		"discount_display": utils.FormatVND(summary.DiscountAmount),
		"total":            summary.Total,
		"total_display":    utils.FormatVND(summary.Total),
	}
	if summary.Coupon != nil {
		data["coupon"] = fiber.Map{
			"code":        summary.Coupon.Code,
			"description": summary.Coupon.Description,
		}
	}

	var address models.ShippingAddress
	if err := h.db.Where("user_id = ? AND is_default = ?", user.ID, true).
		First(&address).Error; err == nil {
		data["default_address"] = address
	}

	return c.JSON(fiber.Map{"success": true, "data": data})
}

type placeOrderRequest struct {
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
	Note          string `json:"note"`
}

// PlaceOrder turns the current selection into an order. All coupon
// guards re-run inside the placement transaction.
func (h *CheckoutHandler) PlaceOrder(c *fiber.Ctx) error {
	var req placeOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	cart, err := h.checkout.ResolveCart(cartOwner(c))
	if err != nil {
		return checkoutError(err)
	}

	order, err := h.checkout.PlaceOrder(user, cart, services.PlaceOrderInput{
		FullName:      req.FullName,
		Phone:         req.Phone,
		Address:       req.Address,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
	})
	if err != nil {
		return checkoutError(err)
	}

	go func(orderID string) {
		var full models.Order
		if err := h.db.Preload("Items").First(&full, "id = ?", orderID).Error; err != nil {
			log.Printf("[Checkout] load order for notification: %v", err)
			return
		}
		if err := h.telegram.NotifyNewOrder(&full); err != nil {
			log.Printf("[Checkout] telegram notification: %v", err)
		}
	}(order.ID.String())

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Đặt hàng thành công!",
		"data": fiber.Map{
			"order_id":      order.ID,
			"order_number":  order.OrderNumber,
			"total":         order.Total,
			"total_display": utils.FormatVND(order.Total),
		},
	})
}
