package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/config"
	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/services"
	"github.com/example/phoneshop/internal/utils"
)

// ProfileHandler manages the customer account: profile fields, phone
// verification, passwords, shipping addresses and held vouchers.
type ProfileHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	vouchers *services.VoucherService
}

// NewProfileHandler constructs ProfileHandler.
func NewProfileHandler(db *gorm.DB, cfg *config.Config, vouchers *services.VoucherService) *ProfileHandler {
	return &ProfileHandler{db: db, cfg: cfg, vouchers: vouchers}
}

// Get returns the caller's profile with addresses.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	var addresses []models.ShippingAddress
	if err := h.db.Where("user_id = ?", user.ID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error; err != nil {
		return err
	}
	user.Addresses = addresses

	return c.JSON(fiber.Map{"success": true, "data": user})
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
}

// Update changes the display name.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.FullName) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập họ tên.")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	if err := h.db.Model(user).Update("full_name", strings.TrimSpace(req.FullName)).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}

type verifyPhoneRequest struct {
	PhoneNumber string `json:"phone_number"`
}

// VerifyPhone binds a phone number to the account. A number can only be
// verified once across all accounts, and verification grants the
// welcome voucher.
func (h *ProfileHandler) VerifyPhone(c *fiber.Ctx) error {
	var req verifyPhoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	phone := strings.TrimSpace(req.PhoneNumber)
	if len(phone) < 9 {
		return fiber.NewError(fiber.StatusBadRequest, "Số điện thoại không hợp lệ.")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}
	if user.IsPhoneVerified {
		return fiber.NewError(fiber.StatusBadRequest, "Tài khoản đã xác thực số điện thoại.")
	}

	var taken int64
	if err := h.db.Model(&models.User{}).
		Where("phone_number = ? AND is_phone_verified = ? AND id <> ?", phone, true, user.ID).
		Count(&taken).Error; err != nil {
		return err
	}
	if taken > 0 {
		return fiber.NewError(fiber.StatusConflict, "Số điện thoại đã được sử dụng bởi tài khoản khác.")
	}

	if err := h.db.Model(user).Updates(map[string]interface{}{
		"phone_number":      phone,
		"is_phone_verified": true,
	}).Error; err != nil {
		return err
	}

	granted, err := h.vouchers.GrantByCode(user.ID, h.cfg.PromoCouponCode)
	if err != nil {
		return err
	}

	message := "Xác thực số điện thoại thành công!"
	if granted {
		message = "Xác thực thành công! Bạn nhận được một voucher giảm giá."
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": message,
		"data": fiber.Map{
			"phone_number":    phone,
			"voucher_granted": granted,
		},
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword rotates the password after checking the current one.
func (h *ProfileHandler) ChangePassword(c *fiber.Ctx) error {
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.NewPassword) < 6 {
		return fiber.NewError(fiber.StatusBadRequest, "Mật khẩu mới phải có ít nhất 6 ký tự.")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return fiber.NewError(fiber.StatusBadRequest, "Mật khẩu hiện tại không đúng.")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := h.db.Model(user).Update("password_hash", hash).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "message": "Đổi mật khẩu thành công."})
}

// ListAddresses returns the caller's addresses, default first.
func (h *ProfileHandler) ListAddresses(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	var addresses []models.ShippingAddress
	if err := h.db.Where("user_id = ?", userID).
		Order("is_default desc, created_at desc").
		Find(&addresses).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": addresses})
}

type addressRequest struct {
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	IsDefault bool   `json:"is_default"`
}

// CreateAddress adds a shipping address. The first address becomes the
// default automatically.
func (h *ProfileHandler) CreateAddress(c *fiber.Ctx) error {
	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.FullName == "" || req.Phone == "" || req.Address == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập đầy đủ thông tin địa chỉ.")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	var count int64
	if err := h.db.Model(&models.ShippingAddress{}).
		Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return err
	}

	address := models.ShippingAddress{
		UserID:    user.ID,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Address:   req.Address,
		IsDefault: req.IsDefault || count == 0,
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&models.ShippingAddress{}).
				Where("user_id = ?", user.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&address).Error
	}); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": address})
}

// UpdateAddress edits one of the caller's addresses.
func (h *ProfileHandler) UpdateAddress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req addressRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	var address models.ShippingAddress
	if err := h.db.Where("id = ? AND user_id = ?", id, user.ID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy địa chỉ.")
		}
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault && !address.IsDefault {
			if err := tx.Model(&models.ShippingAddress{}).
				Where("user_id = ?", user.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Model(&address).Updates(map[string]interface{}{
			"full_name":  req.FullName,
			"phone":      req.Phone,
			"address":    req.Address,
			"is_default": req.IsDefault || address.IsDefault,
		}).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": address})
}

// DeleteAddress removes one of the caller's addresses.
func (h *ProfileHandler) DeleteAddress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	result := h.db.Where("id = ? AND user_id = ?", id, user.ID).
		Delete(&models.ShippingAddress{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy địa chỉ.")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// SetDefaultAddress marks one address as the delivery default.
func (h *ProfileHandler) SetDefaultAddress(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	user, err := requireUser(c, h.db)
	if err != nil {
		return err
	}

	var address models.ShippingAddress
	if err := h.db.Where("id = ? AND user_id = ?", id, user.ID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy địa chỉ.")
		}
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ShippingAddress{}).
			Where("user_id = ?", user.ID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&address).Update("is_default", true).Error
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": address})
}

// ListVouchers returns the caller's usable vouchers.
func (h *ProfileHandler) ListVouchers(c *fiber.Ctx) error {
	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	vouchers, err := h.vouchers.ListUsable(userID, time.Now())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": vouchers})
}

type deleteVouchersRequest struct {
	VoucherIDs []string `json:"voucher_ids"`
}

// DeleteVouchers removes unused vouchers the caller no longer wants.
func (h *ProfileHandler) DeleteVouchers(c *fiber.Ctx) error {
	var req deleteVouchersRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID, ok := currentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "Vui lòng đăng nhập.")
	}

	ids := make([]uuid.UUID, 0, len(req.VoucherIDs))
	for _, raw := range req.VoucherIDs {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng chọn voucher cần xóa.")
	}

	result := h.db.Where("user_id = ? AND is_used = ? AND id IN ?", userID, false, ids).
		Delete(&models.UserVoucher{})
	if result.Error != nil {
		return result.Error
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"deleted": result.RowsAffected},
	})
}
