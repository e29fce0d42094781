package models

import "github.com/google/uuid"

// Product is a phone listed in the catalog. Prices are VND with no
// fractional part, so they are stored as int64.
type Product struct {
	BaseModel
	Brand           string          `gorm:"index" json:"brand"`
	Name            string          `json:"name"`
	MainImage       string          `json:"main_image"`
	Description     string          `json:"description"`
	Specifications  string          `json:"specifications"`
	OriginalPrice   int64           `json:"original_price"`
	SalePrice       int64           `json:"sale_price"`
	DiscountPercent float64         `json:"discount_percent"`
	StockQuantity   int             `json:"stock_quantity"`
	WarrantyMonths  int             `gorm:"default:12" json:"warranty_months"`
	FreeShipping    bool            `json:"free_shipping"`
	OpenBoxCheck    bool            `json:"open_box_check"`
	Return30Days    bool            `json:"return_30_days"`
	Images          []ProductImage  `json:"images,omitempty"`
	StorageOptions  []StorageOption `json:"storage_options,omitempty"`
	ColorOptions    []ColorOption   `json:"color_options,omitempty"`
	Reviews         []Review        `json:"reviews,omitempty"`
}

// DisplayName is the customer-facing product title, "Brand Name".
func (p Product) DisplayName() string {
	return p.Brand + " " + p.Name
}

// DisplayDiscountPercent derives the badge percentage from the price
// pair. Returns 0 when the sale price is not actually lower.
func (p Product) DisplayDiscountPercent() int {
	if p.OriginalPrice <= 0 || p.SalePrice >= p.OriginalPrice {
		return 0
	}
	return int((p.OriginalPrice - p.SalePrice) * 100 / p.OriginalPrice)
}

// PromotionalPrice applies the product-level discount percent to the
// original price, used by the home-page promotion rail.
func (p Product) PromotionalPrice() int64 {
	return int64(float64(p.OriginalPrice) * (100 - p.DiscountPercent) / 100)
}

// ProductImage is one gallery image of a product.
type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Image     string    `json:"image"`
}

// StorageOption is a memory tier (128GB, 256GB, ...) with its own
// original price.
type StorageOption struct {
	BaseModel
	ProductID     uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Storage       string    `json:"storage"`
	OriginalPrice int64     `json:"original_price"`
}

// SalePrice derives the tier's promotional price from the product's
// discount percent, rounded to the nearest thousand dong.
func (o StorageOption) SalePrice(discountPercent float64) int64 {
	if discountPercent <= 0 {
		return o.OriginalPrice
	}
	raw := float64(o.OriginalPrice) * (100 - discountPercent) / 100
	return int64(raw/1000+0.5) * 1000
}

// ColorOption is a color variant with its own image.
type ColorOption struct {
	BaseModel
	ProductID  uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	ColorName  string    `json:"color_name"`
	ColorImage string    `json:"color_image"`
}
