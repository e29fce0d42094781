package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/phoneshop/internal/models"
)

// Guard failures surfaced to the customer when applying a coupon.
var (
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponExpired  = errors.New("coupon expired")
	ErrEmailMismatch  = errors.New("coupon restricted to another account")
	ErrVoucherUsed    = errors.New("voucher already used")
	ErrNoSelection    = errors.New("no cart items selected")
)

// ProductLimitError rejects a selection larger than the coupon allows.
type ProductLimitError struct {
	Limit    int
	Selected int
}

func (e *ProductLimitError) Error() string {
	return fmt.Sprintf("coupon limited to %d products, %d selected", e.Limit, e.Selected)
}

// CheckCouponEligibility runs every application guard over facts already
// gathered from the database. Guard order matters: the first failure is
// the reason shown to the customer.
func CheckCouponEligibility(coupon *models.Coupon, userEmail string, alreadyUsed bool, selectedCount int, now time.Time) error {
	if coupon == nil || !coupon.IsActive {
		return ErrCouponNotFound
	}
	if coupon.IsExpired(now) {
		return ErrCouponExpired
	}
	if coupon.UsageType == models.UsageTypeSpecific {
		if !strings.EqualFold(strings.TrimSpace(userEmail), strings.TrimSpace(coupon.SpecificEmail)) {
			return ErrEmailMismatch
		}
	}
	if alreadyUsed {
		return ErrVoucherUsed
	}
	if selectedCount == 0 {
		return ErrNoSelection
	}
	if coupon.MaxProductLimit > 0 && selectedCount > coupon.MaxProductLimit {
		return &ProductLimitError{Limit: coupon.MaxProductLimit, Selected: selectedCount}
	}
	return nil
}

// VoucherService owns the coupon/voucher redemption workflow.
type VoucherService struct {
	db *gorm.DB
}

// NewVoucherService constructs VoucherService.
func NewVoucherService(db *gorm.DB) *VoucherService {
	return &VoucherService{db: db}
}

// FindActiveCoupon looks up an active coupon by its (uppercased) code.
func (s *VoucherService) FindActiveCoupon(code string) (*models.Coupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrCouponNotFound
	}

	var coupon models.Coupon
	err := s.db.Where("code = ? AND is_active = ?", code, true).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// HasConsumed reports whether the user already redeemed this coupon.
// The UserVoucher consumption flag is authoritative; order history by
// coupon_code is a compatibility fallback for orders that predate
// voucher tracking. excludeOrder skips the order currently being
// placed so the check can run inside the placement transaction after
// the order insert; pass uuid.Nil outside that window.
func (s *VoucherService) HasConsumed(db *gorm.DB, userID uuid.UUID, coupon *models.Coupon, excludeOrder uuid.UUID) (bool, error) {
	var usedVouchers int64
	if err := db.Model(&models.UserVoucher{}).
		Where("user_id = ? AND coupon_id = ? AND is_used = ?", userID, coupon.ID, true).
		Count(&usedVouchers).Error; err != nil {
		return false, err
	}
	if usedVouchers > 0 {
		return true, nil
	}

	history := db.Model(&models.Order{}).
		Where("user_id = ? AND coupon_code = ?", userID, coupon.Code)
	if excludeOrder != uuid.Nil {
		history = history.Where("id <> ?", excludeOrder)
	}

	var priorOrders int64
	if err := history.Count(&priorOrders).Error; err != nil {
		return false, err
	}
	return priorOrders > 0, nil
}

// Validate runs the full guard chain for a user applying a coupon to a
// selection of the given size.
func (s *VoucherService) Validate(user *models.User, coupon *models.Coupon, selectedCount int, now time.Time) error {
	if coupon == nil || !coupon.IsActive {
		return ErrCouponNotFound
	}

	used, err := s.HasConsumed(s.db, user.ID, coupon, uuid.Nil)
	if err != nil {
		return err
	}

	return CheckCouponEligibility(coupon, user.Email, used, selectedCount, now)
}

// Assign moves the (user, coupon) pair from UNASSIGNED to ASSIGNED.
// For specific-email coupons the pre-created unassigned voucher is
// re-bound to the applying user; otherwise a fresh voucher row is
// created unless the user already holds an unconsumed one.
func (s *VoucherService) Assign(userID uuid.UUID, coupon *models.Coupon) error {
	if coupon.UsageType == models.UsageTypeSpecific {
		var existing models.UserVoucher
		err := s.db.Where("coupon_id = ? AND is_used = ?", coupon.ID, false).
			First(&existing).Error
		if err == nil {
			return s.db.Model(&existing).Update("user_id", userID).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}

	var count int64
	if err := s.db.Model(&models.UserVoucher{}).
		Where("user_id = ? AND coupon_id = ? AND is_used = ?", userID, coupon.ID, false).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	voucher := models.UserVoucher{UserID: userID, CouponID: coupon.ID}
	return s.db.Create(&voucher).Error
}

// GrantByCode assigns the named coupon to a user if they do not hold it
// yet. Used for the promotional grant on phone verification. Returns
// true when a new voucher was created.
func (s *VoucherService) GrantByCode(userID uuid.UUID, code string) (bool, error) {
	coupon, err := s.FindActiveCoupon(code)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return false, nil
		}
		return false, err
	}

	var count int64
	if err := s.db.Model(&models.UserVoucher{}).
		Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	voucher := models.UserVoucher{UserID: userID, CouponID: coupon.ID}
	if err := s.db.Create(&voucher).Error; err != nil {
		return false, err
	}
	return true, nil
}

// What Consume must do with the voucher row it locked.
type consumeAction int

const (
	consumeMarkUsed consumeAction = iota
	consumeRecordLegacy
)

// consumeTransition decides the ASSIGNED->CONSUMED transition from the
// locked row state. A nil row is a legacy redemption without an
// assigned voucher; a row that is already used, including one flipped
// by a concurrent checkout while we waited for its lock, is rejected.
func consumeTransition(voucher *models.UserVoucher) (consumeAction, error) {
	if voucher == nil {
		return consumeRecordLegacy, nil
	}
	if voucher.IsUsed {
		return 0, ErrVoucherUsed
	}
	return consumeMarkUsed, nil
}

// Consume marks the user's voucher for this coupon as used, recording
// the consuming order. It must run inside the order placement
// transaction. The voucher row is locked FOR UPDATE by (user, coupon)
// only, never filtered on is_used: a checkout that waited out a
// concurrent consumer must see the row it flipped, not an empty
// result. Legacy redemptions without an assigned voucher insert a
// consumed row instead, so the partial unique index on consumed
// (user_id, coupon_id) pairs serializes them too.
func (s *VoucherService) Consume(tx *gorm.DB, userID uuid.UUID, coupon *models.Coupon, orderID uuid.UUID, now time.Time) error {
	used, err := s.HasConsumed(tx, userID, coupon, orderID)
	if err != nil {
		return err
	}
	if used {
		return ErrVoucherUsed
	}

	var locked *models.UserVoucher
	var voucher models.UserVoucher
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND coupon_id = ?", userID, coupon.ID).
		Order("is_used desc").
		First(&voucher).Error
	switch {
	case err == nil:
		locked = &voucher
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return err
	}

	action, err := consumeTransition(locked)
	if err != nil {
		return err
	}

	if action == consumeRecordLegacy {
		record := models.UserVoucher{
			UserID:   userID,
			CouponID: coupon.ID,
			IsUsed:   true,
			UsedAt:   &now,
			OrderID:  &orderID,
		}
		return tx.Create(&record).Error
	}

	return tx.Model(locked).Updates(map[string]interface{}{
		"is_used":  true,
		"used_at":  now,
		"order_id": orderID,
	}).Error
}

// ListUsable returns the user's assigned, unconsumed vouchers whose
// coupons are still active and unexpired.
func (s *VoucherService) ListUsable(userID uuid.UUID, now time.Time) ([]models.UserVoucher, error) {
	var vouchers []models.UserVoucher
	err := s.db.Preload("Coupon").
		Joins("JOIN coupons ON coupons.id = user_vouchers.coupon_id").
		Where("user_vouchers.user_id = ? AND user_vouchers.is_used = ?", userID, false).
		Where("coupons.is_active = ?", true).
		Where("coupons.expires_at IS NULL OR coupons.expires_at > ?", now).
		Order("user_vouchers.created_at desc").
		Find(&vouchers).Error
	return vouchers, err
}
