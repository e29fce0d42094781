package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/services"
	"github.com/example/phoneshop/internal/utils"
)

// AdminHandler serves the back-office dashboard, user management and
// coupon management.
type AdminHandler struct {
	db       *gorm.DB
	vouchers *services.VoucherService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, vouchers *services.VoucherService) *AdminHandler {
	return &AdminHandler{db: db, vouchers: vouchers}
}

// Dashboard returns the headline shop figures.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	var (
		totalUsers    int64
		totalProducts int64
		totalOrders   int64
		pendingOrders int64
	)
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusPending).
		Count(&pendingOrders).Error; err != nil {
		return err
	}

	var totalRevenue int64
	if err := h.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusCompleted).
		Select("COALESCE(SUM(total), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	monthStart := time.Now().AddDate(0, 0, -30)

	var monthOrders int64
	if err := h.db.Model(&models.Order{}).
		Where("created_at >= ?", monthStart).
		Count(&monthOrders).Error; err != nil {
		return err
	}

	var monthRevenue int64
	if err := h.db.Model(&models.Order{}).
		Where("status = ? AND created_at >= ?", models.OrderStatusCompleted, monthStart).
		Select("COALESCE(SUM(total), 0)").
		Scan(&monthRevenue).Error; err != nil {
		return err
	}

	var recentOrders []models.Order
	if err := h.db.Order("created_at desc").Limit(5).Find(&recentOrders).Error; err != nil {
		return err
	}

	var recentUsers []models.User
	if err := h.db.Order("created_at desc").Limit(5).Find(&recentUsers).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":           totalUsers,
			"total_products":        totalProducts,
			"total_orders":          totalOrders,
			"pending_orders":        pendingOrders,
			"total_revenue":         totalRevenue,
			"total_revenue_display": utils.FormatVND(totalRevenue),
			"month_orders":          monthOrders,
			"month_revenue":         monthRevenue,
			"month_revenue_display": utils.FormatVND(monthRevenue),
			"recent_orders":         recentOrders,
			"recent_users":          recentUsers,
		},
	})
}

// ListUsers returns all accounts, paginated, with optional email search.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.User{})

	if search := c.Query("search"); search != "" {
		q := "%" + search + "%"
		query = query.Where("email ILIKE ? OR full_name ILIKE ?", q, q)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var users []models.User
	if err := query.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&users).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    users,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetUser returns one account with its orders and vouchers.
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var user models.User
	if err := h.db.Preload("Orders").
		Preload("Vouchers").
		Preload("Vouchers.Coupon").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy người dùng.")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": user})
}

// DeleteUser removes an account and its dependent rows. Orders survive
// for bookkeeping.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if adminID, ok := currentUser(c); ok && adminID == id {
		return fiber.NewError(fiber.StatusBadRequest, "Không thể xóa chính tài khoản của bạn.")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.ShippingAddress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.UserVoucher{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Cart{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type couponRequest struct {
	Code            string     `json:"code"`
	Description     string     `json:"description"`
	DiscountType    string     `json:"discount_type"`
	DiscountValue   int64      `json:"discount_value"`
	MinOrder        int64      `json:"min_order"`
	MaxUsage        int        `json:"max_usage"`
	MaxUsagePerUser int        `json:"max_usage_per_user"`
	UsageType       string     `json:"usage_type"`
	SpecificEmail   string     `json:"specific_email"`
	IsActive        *bool      `json:"is_active"`
	ExpiresAt       *time.Time `json:"expires_at"`
	MaxProductLimit int        `json:"max_product_limit"`
}

func validateCouponRequest(req *couponRequest) error {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập mã giảm giá.")
	}

	if req.DiscountType == "" {
		req.DiscountType = models.DiscountTypePercent
	}
	if req.DiscountType != models.DiscountTypePercent && req.DiscountType != models.DiscountTypeFixed {
		return fiber.NewError(fiber.StatusBadRequest, "invalid discount_type")
	}
	if req.DiscountValue <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Giá trị giảm phải lớn hơn 0.")
	}
	if req.DiscountType == models.DiscountTypePercent && req.DiscountValue > 100 {
		return fiber.NewError(fiber.StatusBadRequest, "Phần trăm giảm giá không được vượt quá 100.")
	}

	if req.UsageType == "" {
		req.UsageType = models.UsageTypeAll
	}
	if req.UsageType != models.UsageTypeAll && req.UsageType != models.UsageTypeSpecific {
		return fiber.NewError(fiber.StatusBadRequest, "invalid usage_type")
	}
	req.SpecificEmail = strings.ToLower(strings.TrimSpace(req.SpecificEmail))
	if req.UsageType == models.UsageTypeSpecific && req.SpecificEmail == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập email cho voucher cá nhân.")
	}

	return nil
}

// ListCoupons returns all coupons, paginated.
func (h *AdminHandler) ListCoupons(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Coupon{}).Count(&total).Error; err != nil {
		return err
	}

	var coupons []models.Coupon
	if err := h.db.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&coupons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    coupons,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// CreateCoupon defines a new discount rule. A specific-email coupon is
// handed to the matching account immediately when one exists.
func (h *AdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validateCouponRequest(&req); err != nil {
		return err
	}

	var existing int64
	if err := h.db.Model(&models.Coupon{}).
		Where("code = ?", req.Code).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return fiber.NewError(fiber.StatusConflict, "Mã giảm giá đã tồn tại.")
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	maxUsagePerUser := req.MaxUsagePerUser
	if maxUsagePerUser <= 0 {
		maxUsagePerUser = 1
	}

	coupon := models.Coupon{
		Code:            req.Code,
		Description:     req.Description,
		DiscountType:    req.DiscountType,
		DiscountValue:   req.DiscountValue,
		MinOrder:        req.MinOrder,
		MaxUsage:        req.MaxUsage,
		MaxUsagePerUser: maxUsagePerUser,
		UsageType:       req.UsageType,
		SpecificEmail:   req.SpecificEmail,
		IsActive:        isActive,
		ExpiresAt:       req.ExpiresAt,
		MaxProductLimit: req.MaxProductLimit,
	}
	if err := h.db.Create(&coupon).Error; err != nil {
		return err
	}

	if coupon.UsageType == models.UsageTypeSpecific {
		var user models.User
		err := h.db.Where("LOWER(email) = ?", coupon.SpecificEmail).First(&user).Error
		if err == nil {
			if err := h.vouchers.Assign(user.ID, &coupon); err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// UpdateCoupon edits a discount rule. The code itself is immutable.
func (h *AdminHandler) UpdateCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var coupon models.Coupon
	if err := h.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy mã giảm giá.")
		}
		return err
	}

	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Code = coupon.Code
	if err := validateCouponRequest(&req); err != nil {
		return err
	}

	isActive := coupon.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	if err := h.db.Model(&coupon).Updates(map[string]interface{}{
		"description":        req.Description,
		"discount_type":      req.DiscountType,
		"discount_value":     req.DiscountValue,
		"min_order":          req.MinOrder,
		"max_usage":          req.MaxUsage,
		"max_usage_per_user": req.MaxUsagePerUser,
		"usage_type":         req.UsageType,
		"specific_email":     req.SpecificEmail,
		"is_active":          isActive,
		"expires_at":         req.ExpiresAt,
		"max_product_limit":  req.MaxProductLimit,
	}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

// DeleteCoupon removes a discount rule and its unconsumed vouchers.
// Consumed vouchers stay as redemption history.
func (h *AdminHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("coupon_id = ? AND is_used = ?", id, false).
			Delete(&models.UserVoucher{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Coupon{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// CouponUsage returns a coupon's redemption picture: vouchers handed
// out, consumed ones and the latest orders placed with its code.
func (h *AdminHandler) CouponUsage(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var coupon models.Coupon
	if err := h.db.First(&coupon, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy mã giảm giá.")
		}
		return err
	}

	var assigned, consumed int64
	if err := h.db.Model(&models.UserVoucher{}).
		Where("coupon_id = ?", coupon.ID).Count(&assigned).Error; err != nil {
		return err
	}
	if err := h.db.Model(&models.UserVoucher{}).
		Where("coupon_id = ? AND is_used = ?", coupon.ID, true).
		Count(&consumed).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := h.db.Where("coupon_code = ?", coupon.Code).
		Order("created_at desc").Limit(10).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"coupon":            coupon,
			"assigned_vouchers": assigned,
			"consumed_vouchers": consumed,
			"used_count":        coupon.UsedCount,
			"recent_orders":     orders,
		},
	})
}
