package parts

import (
	"time"

	"github.com/goayasushi/zaiko-be/internal/masterdata/suppliers"
	"github.com/goayasushi/zaiko-be/internal/users"
)

// Response is the JSON shape of a part.
type Response struct {
	ID            int64               `json:"id"`
	Supplier      *suppliers.Supplier `json:"supplier"`
	CreatedBy     *users.Profile      `json:"created_by"`
	UpdatedBy     *users.Profile      `json:"updated_by"`
	Name          string              `json:"name"`
	Category      string              `json:"category"`
	CostPrice     string              `json:"cost_price"`
	SellingPrice  string              `json:"selling_price"`
	StockQuantity int64               `json:"stock_quantity"`
	ReorderLevel  int64               `json:"reorder_level"`
	Description   string              `json:"description"`
	Image         *string             `json:"image"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// NewResponse renders d. imageURL turns a stored key into a public URL.
func NewResponse(d Detail, imageURL func(key string) string) Response {
	resp := Response{
		ID:            d.ID,
		Supplier:      d.Supplier,
		CreatedBy:     d.Creator,
		UpdatedBy:     d.Updater,
		Name:          d.Name,
		Category:      d.Category,
		CostPrice:     d.CostPrice.StringFixed(decimalPlaces),
		SellingPrice:  d.SellingPrice.StringFixed(decimalPlaces),
		StockQuantity: d.StockQuantity,
		ReorderLevel:  d.ReorderLevel,
		Description:   d.Description,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if d.Image != nil && *d.Image != "" {
		u := imageURL(*d.Image)
		resp.Image = &u
	}
	return resp
}
