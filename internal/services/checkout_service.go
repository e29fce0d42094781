package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
)

// Checkout failures surfaced to the customer.
var (
	ErrCartEmpty           = errors.New("cart is empty")
	ErrNothingToCheckout   = errors.New("no cart items selected for checkout")
	ErrMissingShippingInfo = errors.New("missing shipping information")
)

// CartOwner identifies whose cart a request operates on: a logged-in
// user or a guest session key.
type CartOwner struct {
	UserID     *uuid.UUID
	SessionKey string
}

// FilterSelected reconciles a cart against the transient selection. An
// empty selection defaults to the entire cart; unknown ids are ignored.
func FilterSelected(items []models.CartItem, selectedIDs []string) []models.CartItem {
	if len(selectedIDs) == 0 {
		return items
	}

	wanted := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		wanted[id] = true
	}

	var out []models.CartItem
	for _, item := range items {
		if wanted[item.ID.String()] {
			out = append(out, item)
		}
	}
	return out
}

// OrderTotal floors subtotal minus discount at zero.
func OrderTotal(subtotal, discount int64) int64 {
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}

// CheckoutService reconciles carts, selections and coupons into
// immutable orders.
type CheckoutService struct {
	db       *gorm.DB
	vouchers *VoucherService
}

// NewCheckoutService constructs CheckoutService.
func NewCheckoutService(db *gorm.DB, vouchers *VoucherService) *CheckoutService {
	return &CheckoutService{db: db, vouchers: vouchers}
}

// ResolveCart finds or creates the owner's cart. When a logged-in user
// still carries a guest session key, the orphaned guest cart is dropped.
func (s *CheckoutService) ResolveCart(owner CartOwner) (*models.Cart, error) {
	var cart models.Cart

	if owner.UserID != nil {
		err := s.db.Where("user_id = ?", *owner.UserID).First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart = models.Cart{UserID: owner.UserID}
			err = s.db.Create(&cart).Error
		}
		if err != nil {
			return nil, err
		}

		if owner.SessionKey != "" {
			if err := s.db.Where("session_key = ? AND user_id IS NULL", owner.SessionKey).
				Delete(&models.Cart{}).Error; err != nil {
				return nil, err
			}
		}
		return &cart, nil
	}

	if owner.SessionKey == "" {
		return nil, ErrNoCartIdentity
	}

	err := s.db.Where("session_key = ? AND user_id IS NULL", owner.SessionKey).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{SessionKey: owner.SessionKey}
		err = s.db.Create(&cart).Error
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// ErrNoCartIdentity is returned when a request carries neither a token
// nor a session key.
var ErrNoCartIdentity = errors.New("session key required for guest carts")

// Session loads (or creates) the checkout-attempt state for a cart.
func (s *CheckoutService) Session(cartID uuid.UUID) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := s.db.Where("cart_id = ?", cartID).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = models.CheckoutSession{CartID: cartID}
		err = s.db.Create(&session).Error
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// SetSelection persists the chosen cart-item ids.
func (s *CheckoutService) SetSelection(cartID uuid.UUID, ids []string) error {
	session, err := s.Session(cartID)
	if err != nil {
		return err
	}
	return s.db.Model(session).Update("selected_item_ids", pq.StringArray(ids)).Error
}

// SetCoupon records the applied coupon code on the checkout session.
func (s *CheckoutService) SetCoupon(cartID uuid.UUID, code string) error {
	session, err := s.Session(cartID)
	if err != nil {
		return err
	}
	return s.db.Model(session).Update("applied_coupon", code).Error
}

// ClearCoupon removes the applied coupon from the checkout session.
func (s *CheckoutService) ClearCoupon(cartID uuid.UUID) error {
	return s.db.Model(&models.CheckoutSession{}).
		Where("cart_id = ?", cartID).
		Update("applied_coupon", "").Error
}

// Reset clears both the coupon and the selection, matching the cart
// page always starting from a clean slate.
func (s *CheckoutService) Reset(cartID uuid.UUID) error {
	return s.db.Model(&models.CheckoutSession{}).
		Where("cart_id = ?", cartID).
		Updates(map[string]interface{}{
			"applied_coupon":    "",
			"selected_item_ids": nil,
		}).Error
}

// SelectedItems returns the cart items chosen for checkout, defaulting
// to the whole cart when nothing was explicitly selected.
func (s *CheckoutService) SelectedItems(cart *models.Cart) ([]models.CartItem, *models.CheckoutSession, error) {
	session, err := s.Session(cart.ID)
	if err != nil {
		return nil, nil, err
	}

	var items []models.CartItem
	if err := s.db.Preload("Product").Where("cart_id = ?", cart.ID).
		Order("created_at asc").Find(&items).Error; err != nil {
		return nil, nil, err
	}

	return FilterSelected(items, session.SelectedItemIDs), session, nil
}

// Summary is the recomputed checkout state shown before placement.
type Summary struct {
	Items          []models.CartItem
	Subtotal       int64
	Coupon         *models.Coupon
	DiscountAmount int64
	Total          int64
}

// Summarize recomputes subtotal/discount/total for the current
// selection. The coupon guard check here is advisory; a failure clears
// the applied coupon and returns the reason. Everything is re-validated
// at placement.
func (s *CheckoutService) Summarize(user *models.User, cart *models.Cart) (*Summary, error) {
	items, session, err := s.SelectedItems(cart)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNothingToCheckout
	}

	summary := &Summary{Items: items, Subtotal: models.CartSubtotal(items)}

	if session.AppliedCoupon != "" && user != nil {
		coupon, err := s.vouchers.FindActiveCoupon(session.AppliedCoupon)
		if err != nil && !errors.Is(err, ErrCouponNotFound) {
			return nil, err
		}
		if coupon != nil {
			if guardErr := s.vouchers.Validate(user, coupon, len(items), time.Now()); guardErr != nil {
				if clearErr := s.ClearCoupon(cart.ID); clearErr != nil {
					return nil, clearErr
				}
				return nil, guardErr
			}
			summary.Coupon = coupon
			summary.DiscountAmount = coupon.CalculateDiscount(summary.Subtotal)
		}
	}

	summary.Total = OrderTotal(summary.Subtotal, summary.DiscountAmount)
	return summary, nil
}

// PlaceOrderInput carries the shipping form fields.
type PlaceOrderInput struct {
	FullName      string
	Phone         string
	Address       string
	PaymentMethod string
	Note          string
}

// PlaceOrder re-validates every coupon guard server-side and, in one
// transaction, materializes the order with item snapshots, deletes the
// consumed cart items, consumes the voucher and clears the checkout
// session. No partial state survives a guard failure.
func (s *CheckoutService) PlaceOrder(user *models.User, cart *models.Cart, input PlaceOrderInput) (*models.Order, error) {
	if input.FullName == "" || input.Phone == "" || input.Address == "" {
		return nil, ErrMissingShippingInfo
	}
	if input.PaymentMethod != models.PaymentMethodOnline {
		input.PaymentMethod = models.PaymentMethodCOD
	}

	now := time.Now()
	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var session models.CheckoutSession
		if err := tx.Where("cart_id = ?", cart.ID).First(&session).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		var items []models.CartItem
		if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).
			Order("created_at asc").Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrCartEmpty
		}

		selected := FilterSelected(items, session.SelectedItemIDs)
		if len(selected) == 0 {
			return ErrNothingToCheckout
		}

		subtotal := models.CartSubtotal(selected)

		var coupon *models.Coupon
		var discount int64
		if session.AppliedCoupon != "" {
			var found models.Coupon
			err := tx.Where("code = ? AND is_active = ?", session.AppliedCoupon, true).
				First(&found).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil {
				used, err := s.vouchers.HasConsumed(tx, user.ID, &found, uuid.Nil)
				if err != nil {
					return err
				}
				if guardErr := CheckCouponEligibility(&found, user.Email, used, len(selected), now); guardErr != nil {
					return guardErr
				}
				coupon = &found
				discount = found.CalculateDiscount(subtotal)
			}
		}

		paymentStatus := "cod"
		if input.PaymentMethod == models.PaymentMethodOnline {
			paymentStatus = "unpaid"
		}

		order = models.Order{
			UserID:         user.ID,
			OrderNumber:    generateOrderNumber(),
			FullName:       input.FullName,
			Phone:          input.Phone,
			Address:        input.Address,
			Status:         models.OrderStatusPending,
			PaymentMethod:  input.PaymentMethod,
			PaymentStatus:  paymentStatus,
			Subtotal:       subtotal,
			DiscountAmount: discount,
			CouponCode:     session.AppliedCoupon,
			Total:          OrderTotal(subtotal, discount),
			Note:           input.Note,
		}

		for _, item := range selected {
			snapshot := models.OrderItem{
				ProductID: &item.ProductID,
				Storage:   item.Storage,
				Color:     item.Color,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			if item.Product != nil {
				snapshot.ProductName = item.Product.DisplayName()
			}
			order.Items = append(order.Items, snapshot)
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		selectedIDs := make([]uuid.UUID, 0, len(selected))
		for _, item := range selected {
			selectedIDs = append(selectedIDs, item.ID)
		}
		if err := tx.Where("cart_id = ? AND id IN ?", cart.ID, selectedIDs).
			Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		if coupon != nil {
			if err := s.vouchers.Consume(tx, user.ID, coupon, order.ID, now); err != nil {
				return err
			}
			if err := tx.Model(coupon).
				UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error; err != nil {
				return err
			}
		}

		if session.ID != uuid.Nil {
			if err := tx.Model(&session).Updates(map[string]interface{}{
				"applied_coupon":    "",
				"selected_item_ids": nil,
			}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func generateOrderNumber() string {
	return fmt.Sprintf("#%d", time.Now().UnixNano()%1000000000)
}
