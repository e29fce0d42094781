package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/middleware"
	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/services"
)

// currentUser returns the authenticated user's id, if any.
func currentUser(c *fiber.Ctx) (uuid.UUID, bool) {
	return middleware.GetCurrentUserID(c)
}

// requireUser loads the authenticated user or fails with 401.
func requireUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
		}
		return nil, err
	}
	return &user, nil
}

// cartOwner derives the cart identity from the request: the logged-in
// user when present, otherwise the guest session key header.
func cartOwner(c *fiber.Ctx) services.CartOwner {
	owner := services.CartOwner{SessionKey: c.Get(middleware.SessionKeyHeader)}
	if userID, ok := currentUser(c); ok {
		owner.UserID = &userID
	}
	return owner
}

// voucherError maps coupon guard failures to the message shown in the
// cart. Unknown errors pass through to the error handler.
func voucherError(err error) error {
	var limitErr *services.ProductLimitError
	switch {
	case errors.Is(err, services.ErrCouponNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Mã giảm giá không tồn tại hoặc đã hết hạn!")
	case errors.Is(err, services.ErrCouponExpired):
		return fiber.NewError(fiber.StatusBadRequest, "Mã giảm giá đã hết hạn!")
	case errors.Is(err, services.ErrEmailMismatch):
		return fiber.NewError(fiber.StatusForbidden, "Xin lỗi tài khoản của bạn không thể dùng được Voucher này.")
	case errors.Is(err, services.ErrVoucherUsed):
		return fiber.NewError(fiber.StatusBadRequest, "Bạn đã sử dụng voucher này rồi!")
	case errors.Is(err, services.ErrNoSelection):
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng chọn sản phẩm trước khi áp dụng mã giảm giá!")
	case errors.As(err, &limitErr):
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(
			"Voucher này chỉ áp dụng cho tối đa %d sản phẩm. Bạn đang chọn %d sản phẩm.",
			limitErr.Limit, limitErr.Selected))
	}
	return err
}

// checkoutError maps checkout failures to customer-facing messages.
func checkoutError(err error) error {
	switch {
	case errors.Is(err, services.ErrCartEmpty):
		return fiber.NewError(fiber.StatusBadRequest, "Giỏ hàng của bạn đang trống.")
	case errors.Is(err, services.ErrNothingToCheckout):
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng chọn sản phẩm để thanh toán.")
	case errors.Is(err, services.ErrMissingShippingInfo):
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập đầy đủ thông tin giao hàng.")
	case errors.Is(err, services.ErrNoCartIdentity):
		return fiber.NewError(fiber.StatusBadRequest, "Thiếu định danh giỏ hàng.")
	}
	return voucherError(err)
}
