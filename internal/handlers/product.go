package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/phoneshop/internal/models"
	"github.com/example/phoneshop/internal/utils"
)

// ProductHandler manages catalog browsing and admin product CRUD.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// Home returns the storefront landing data: the latest products plus a
// promotion rail of the most discounted ones.
func (h *ProductHandler) Home(c *fiber.Ctx) error {
	var products []models.Product
	if err := h.db.Order("created_at desc").Limit(15).Find(&products).Error; err != nil {
		return err
	}

	var promoted []models.Product
	if err := h.db.Where("discount_percent > 0").
		Order("discount_percent desc").Limit(5).
		Find(&promoted).Error; err != nil {
		return err
	}

	promotions := make([]fiber.Map, 0, len(promoted))
	for _, p := range promoted {
		promotions = append(promotions, fiber.Map{
			"product":          p,
			"discount_percent": int(p.DiscountPercent),
			"discounted_price": p.PromotionalPrice(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"products":           products,
			"special_promotions": promotions,
		},
	})
}

// Search finds products by name, brand or description.
func (h *ProductHandler) Search(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))

	db := h.db.Model(&models.Product{})
	if query == "" {
		db = db.Limit(12)
	} else {
		q := "%" + query + "%"
		db = db.Where("name ILIKE ? OR brand ILIKE ? OR description ILIKE ?", q, q, q)
	}

	var products []models.Product
	if err := db.Order("created_at desc").Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": products, "query": query})
}

// List returns paginated products for the management screens.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Product{})

	if brand := c.Query("brand"); brand != "" {
		query = query.Where("brand = ?", brand)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Limit(pg.Limit).Offset(pg.Offset).
		Order("created_at desc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// Get loads one product with its gallery, options and reviews, plus the
// caller's review eligibility.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var product models.Product
	if err := h.db.Preload("Images").
		Preload("StorageOptions").
		Preload("ColorOptions").
		Preload("Reviews").
		Preload("Reviews.User").
		First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm.")
		}
		return err
	}

	reviews := make([]fiber.Map, 0, len(product.Reviews))
	for _, r := range product.Reviews {
		reviews = append(reviews, fiber.Map{
			"id":           r.ID,
			"comment":      r.Comment,
			"is_anonymous": r.IsAnonymous,
			"display_name": r.DisplayName(),
			"created_at":   r.CreatedAt,
		})
	}

	storageOptions := make([]fiber.Map, 0, len(product.StorageOptions))
	for _, o := range product.StorageOptions {
		storageOptions = append(storageOptions, fiber.Map{
			"id":             o.ID,
			"storage":        o.Storage,
			"original_price": o.OriginalPrice,
			"sale_price":     o.SalePrice(product.DiscountPercent),
		})
	}

	response := fiber.Map{
		"product":          product,
		"reviews":          reviews,
		"storage_options":  storageOptions,
		"discount_percent": product.DisplayDiscountPercent(),
	}

	if userID, ok := currentUser(c); ok {
		canReview, hasPurchased, err := h.reviewEligibility(userID, product.ID)
		if err != nil {
			return err
		}
		response["has_purchased"] = hasPurchased
		response["can_review"] = canReview
	}

	return c.JSON(fiber.Map{"success": true, "data": response})
}

// reviewEligibility reports whether the user bought this product in a
// completed order whose item is not reviewed yet, and whether they may
// still post a review.
func (h *ProductHandler) reviewEligibility(userID, productID uuid.UUID) (canReview, hasPurchased bool, err error) {
	var purchasable int64
	err = h.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ?", userID, models.OrderStatusCompleted).
		Where("order_items.product_id = ? AND order_items.is_reviewed = ?", productID, false).
		Count(&purchasable).Error
	if err != nil {
		return false, false, err
	}

	hasPurchased = purchasable > 0
	if !hasPurchased {
		return false, false, nil
	}

	var reviewed int64
	err = h.db.Model(&models.Review{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&reviewed).Error
	if err != nil {
		return false, hasPurchased, err
	}

	return reviewed == 0, hasPurchased, nil
}

type storageOptionRequest struct {
	Storage       string `json:"storage"`
	OriginalPrice int64  `json:"original_price"`
}

type colorOptionRequest struct {
	ColorName  string `json:"color_name"`
	ColorImage string `json:"color_image"`
}

type productRequest struct {
	Brand           string                 `json:"brand"`
	Name            string                 `json:"name"`
	MainImage       string                 `json:"main_image"`
	Description     string                 `json:"description"`
	Specifications  string                 `json:"specifications"`
	OriginalPrice   int64                  `json:"original_price"`
	SalePrice       int64                  `json:"sale_price"`
	DiscountPercent float64                `json:"discount_percent"`
	StockQuantity   int                    `json:"stock_quantity"`
	WarrantyMonths  int                    `json:"warranty_months"`
	FreeShipping    bool                   `json:"free_shipping"`
	OpenBoxCheck    bool                   `json:"open_box_check"`
	Return30Days    bool                   `json:"return_30_days"`
	Images          []string               `json:"images"`
	StorageOptions  []storageOptionRequest `json:"storage_options"`
	ColorOptions    []colorOptionRequest   `json:"color_options"`
}

func buildProductFromRequest(req productRequest) (models.Product, error) {
	if req.Brand == "" || req.Name == "" || req.OriginalPrice <= 0 {
		return models.Product{}, fiber.NewError(fiber.StatusBadRequest, "Vui lòng nhập đầy đủ thông tin sản phẩm.")
	}
	if req.SalePrice <= 0 {
		req.SalePrice = req.OriginalPrice
	}
	if req.WarrantyMonths <= 0 {
		req.WarrantyMonths = 12
	}

	product := models.Product{
		Brand:           req.Brand,
		Name:            req.Name,
		MainImage:       req.MainImage,
		Description:     req.Description,
		Specifications:  req.Specifications,
		OriginalPrice:   req.OriginalPrice,
		SalePrice:       req.SalePrice,
		DiscountPercent: req.DiscountPercent,
		StockQuantity:   req.StockQuantity,
		WarrantyMonths:  req.WarrantyMonths,
		FreeShipping:    req.FreeShipping,
		OpenBoxCheck:    req.OpenBoxCheck,
		Return30Days:    req.Return30Days,
	}

	for _, image := range req.Images {
		if image == "" {
			continue
		}
		product.Images = append(product.Images, models.ProductImage{Image: image})
	}
	for _, o := range req.StorageOptions {
		product.StorageOptions = append(product.StorageOptions, models.StorageOption{
			Storage:       o.Storage,
			OriginalPrice: o.OriginalPrice,
		})
	}
	for _, o := range req.ColorOptions {
		product.ColorOptions = append(product.ColorOptions, models.ColorOption{
			ColorName:  o.ColorName,
			ColorImage: o.ColorImage,
		})
	}

	return product, nil
}

// Create handles admin product creation.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := buildProductFromRequest(req)
	if err != nil {
		return err
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// Update replaces a product and its option rows.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var existing models.Product
	if err := h.db.First(&existing, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "Không tìm thấy sản phẩm.")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := buildProductFromRequest(req)
	if err != nil {
		return err
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.StorageOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ColorOption{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&existing).Omit("ID", "CreatedAt").Updates(map[string]interface{}{
			"brand":            product.Brand,
			"name":             product.Name,
			"main_image":       product.MainImage,
			"description":      product.Description,
			"specifications":   product.Specifications,
			"original_price":   product.OriginalPrice,
			"sale_price":       product.SalePrice,
			"discount_percent": product.DiscountPercent,
			"stock_quantity":   product.StockQuantity,
			"warranty_months":  product.WarrantyMonths,
			"free_shipping":    product.FreeShipping,
			"open_box_check":   product.OpenBoxCheck,
			"return_30_days":   product.Return30Days,
		}).Error; err != nil {
			return err
		}

		for i := range product.Images {
			product.Images[i].ProductID = id
		}
		for i := range product.StorageOptions {
			product.StorageOptions[i].ProductID = id
		}
		for i := range product.ColorOptions {
			product.ColorOptions[i].ProductID = id
		}

		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return err
			}
		}
		if len(product.StorageOptions) > 0 {
			if err := tx.Create(&product.StorageOptions).Error; err != nil {
				return err
			}
		}
		if len(product.ColorOptions) > 0 {
			if err := tx.Create(&product.ColorOptions).Error; err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// Delete removes a product and its dependent rows.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.StorageOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.ColorOption{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
