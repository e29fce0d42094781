package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/services"
	"github.com/example/phoneshop/internal/utils"
)

// CartHandler manages the cart and the coupon application flow.
type CartHandler struct {
	db       *gorm.DB
	checkout *services.CheckoutService
	vouchers *services.VoucherService
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB, checkout *services.CheckoutService, vouchers *services.VoucherService) *CartHandler {
	return &CartHandler{db: db, checkout: checkout, vouchers: vouchers}
}

func (h *CartHandler) resolveCart(c *fiber.Ctx) (*models.Cart, error) {
	cart, err := h.checkout.ResolveCart(cartOwner(c))
	if err != nil {
		return nil, checkoutError(err)
	}
	return cart, nil
}

func (h *CartHandler) cartItems(cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := h.db.Preload("Product").Where("cart_id = ?", cartID).
		Order("created_at asc").Find(&items).Error
	return items, err
}

// cartPayload is the recomputed cart state returned after every mutation.
func (h *CartHandler) cartPayload(cartID uuid.UUID) (fiber.Map, error) {
	items, err := h.cartItems(cartID)
	if err != nil {
		return nil, err
	}

	subtotal := models.CartSubtotal(items)
	return fiber.Map{
		"cart_id":          cartID,
		"items":            items,
		"item_count":       len(items),
		"subtotal":         subtotal,
		"subtotal_display": utils.FormatVND(subtotal),
	}, nil
}

// Get returns the cart content. Opening the cart page starts a fresh
// checkout attempt, so any previously applied coupon and selection are
// cleared.
func (h *CartHandler) Get(c *fiber.Ctx) error {
	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.checkout.Reset(cart.ID); err != nil {
		return err
	}

	payload, err := h.cartPayload(cart.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": payload})
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Storage   string `json:"storage"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) addItem(cart *models.Cart, req addToCartRequest) (*models.CartItem, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.db.Preload("StorageOptions").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm.")
		}
		return nil, err
	}

	price := product.SalePrice
	for _, option := range product.StorageOptions {
		if option.Storage == req.Storage {
			price = option.SalePrice(product.DiscountPercent)
			break
		}
	}

	// Same product+storage+color merges into the existing line.
	var item models.CartItem
	err = h.db.Where("cart_id = ? AND product_id = ? AND storage = ? AND color = ?",
		cart.ID, productID, req.Storage, req.Color).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		item.Price = price
		if err := h.db.Model(&item).Updates(map[string]interface{}{
			"quantity": item.Quantity,
			"price":    item.Price,
		}).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Storage:   req.Storage,
			Color:     req.Color,
			Quantity:  req.Quantity,
			Price:     price,
		}
		if err := h.db.Create(&item).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return &item, nil
}

// Add puts a product into the cart, merging duplicate lines.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if _, err := h.addItem(cart, req); err != nil {
		return err
	}

	payload, err := h.cartPayload(cart.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Đã thêm sản phẩm vào giỏ hàng.",
		"data":    payload,
	})
}

// BuyNow adds the product and pre-selects only that line, so checkout
// starts with a single item.
func (h *CartHandler) BuyNow(c *fiber.Ctx) error {
	var req addToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	item, err := h.addItem(cart, req)
	if err != nil {
		return err
	}

	if err := h.checkout.SetSelection(cart.ID, []string{item.ID.String()}); err != nil {
		return err
	}

	payload, err := h.cartPayload(cart.ID)
	if err != nil {
		return err
	}
	payload["selected_item_ids"] = []string{item.ID.String()}
	return c.JSON(fiber.Map{"success": true, "data": payload})
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) ownedItem(cart *models.Cart, rawID string) (*models.CartItem, error) {
	itemID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var item models.CartItem
	if err := h.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm trong giỏ hàng.")
		}
		return nil, err
	}
	return &item, nil
}

// Update changes one line's quantity. Zero or less removes the line.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	item, err := h.ownedItem(cart, c.Params("id"))
	if err != nil {
		return err
	}

	if req.Quantity <= 0 {
		if err := h.db.Delete(item).Error; err != nil {
			return err
		}
	} else {
		if err := h.db.Model(item).Update("quantity", req.Quantity).Error; err != nil {
			return err
		}
	}

	payload, err := h.cartPayload(cart.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": payload})
}

type updateAllRequest struct {
	Items []struct {
		ID       string `json:"id"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

// UpdateAll applies quantity changes to several lines at once.
func (h *CartHandler) UpdateAll(c *fiber.Ctx) error {
	var req updateAllRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, change := range req.Items {
			itemID, err := uuid.Parse(change.ID)
			if err != nil {
				continue
			}
			if change.Quantity <= 0 {
				if err := tx.Where("id = ? AND cart_id = ?", itemID, cart.ID).
					Delete(&models.CartItem{}).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&models.CartItem{}).
				Where("id = ? AND cart_id = ?", itemID, cart.ID).
				Update("quantity", change.Quantity).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	payload, err := h.cartPayload(cart.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": payload})
}

// Remove deletes one line and returns the recomputed cart.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	item, err := h.ownedItem(cart, c.Params("id"))
	if err != nil {
		return err
	}

	if err := h.db.Delete(item).Error; err != nil {
		return err
	}

	payload, err := h.cartPayload(cart.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": payload})
}

type removeBulkRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// RemoveBulk deletes several lines at once.
func (h *CartHandler) RemoveBulk(c *fiber.Ctx) error {
	var req removeBulkRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	ids := make([]uuid.UUID, 0, len(req.ItemIDs))
	for _, raw := range req.ItemIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		if err := h.db.Where("cart_id = ? AND id IN ?", cart.ID, ids).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
	}

	payload, err := h.cartPayload(cart.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": payload})
}

// Clear empties the cart and resets the checkout session.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if err := h.checkout.Reset(cart.ID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Đã xóa giỏ hàng."})
}

type selectItemsRequest struct {
	ItemIDs []string `json:"item_ids"`
}

// SelectItems records which lines take part in checkout.
func (h *CartHandler) SelectItems(c *fiber.Ctx) error {
	var req selectItemsRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.checkout.SetSelection(cart.ID, req.ItemIDs); err != nil {
		return err
	}

	selected, _, err := h.checkout.SelectedItems(cart)
	if err != nil {
		return err
	}

	subtotal := models.CartSubtotal(selected)
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"selected_count":   len(selected),
			"subtotal":         subtotal,
			"subtotal_display": utils.FormatVND(subtotal),
		},
	})
}

// previewSelection resolves the selection a coupon is validated
// against: posted ids win over the stored session selection.
func previewSelection(items []models.CartItem, posted, stored []string) []models.CartItem {
	if len(posted) > 0 {
		return services.FilterSelected(items, posted)
	}
	return services.FilterSelected(items, stored)
}

type applyCouponRequest struct {
	Code            string   `json:"code"`
	SelectedItemIDs []string `json:"selected_item_ids"`
}

// ApplyCoupon validates a coupon code against the current selection and,
// on success, records it on the checkout session and returns the
// recomputed discount and total.
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	var req applyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập mã giảm giá!")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	// The posted selection is only previewed here; a guard failure must
	// not leave any checkout state behind.
	items, err := h.cartItems(cart.ID)
	if err != nil {
		return err
	}
	session, err := h.checkout.Session(cart.ID)
	if err != nil {
		return err
	}
	selected := previewSelection(items, req.SelectedItemIDs, session.SelectedItemIDs)

	coupon, err := h.vouchers.FindActiveCoupon(req.Code)
	if err != nil {
		return voucherError(err)
	}

	if err := h.vouchers.Validate(user, coupon, len(selected), time.Now()); err != nil {
		return voucherError(err)
	}

	if err := h.vouchers.Assign(user.ID, coupon); err != nil {
		return err
	}
	if len(req.SelectedItemIDs) > 0 {
		if err := h.checkout.SetSelection(cart.ID, req.SelectedItemIDs); err != nil {
			return err
		}
	}
	if err := h.checkout.SetCoupon(cart.ID, coupon.Code); err != nil {
		return err
	}

	subtotal := models.CartSubtotal(selected)
	discount := coupon.CalculateDiscount(subtotal)
	total := services.OrderTotal(subtotal, discount)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Áp dụng mã giảm giá thành công!",
		"data": fiber.Map{
			"code":             coupon.Code,
			"subtotal":         subtotal,
			"discount":         discount,
			"discount_display": utils.FormatVND(discount),
			"total":            total,
			"total_display":    utils.FormatVND(total),
		},
	})
}

// RemoveCoupon drops the applied coupon and returns the recomputed total.
func (h *CartHandler) RemoveCoupon(c *fiber.Ctx) error {
	cart, err := h.resolveCart(c)
	if err != nil {
		return err
	}

	if err := h.checkout.ClearCoupon(cart.ID); err != nil {
		return err
	}

	selected, _, err := h.checkout.SelectedItems(cart)
	if err != nil {
		return err
	}

	subtotal := models.CartSubtotal(selected)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Đã bỏ mã giảm giá.",
		"data": fiber.Map{
			"subtotal":      subtotal,
			"total":         subtotal,
			"total_display": utils.FormatVND(subtotal),
		},
	})
}
