package parts

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/goayasushi/zaiko-be/internal/masterdata/suppliers"
	"github.com/goayasushi/zaiko-be/internal/users"
)

// Entity is the audit log entity name.
const Entity = "part"

// ImagePrefix is the storage prefix for part images.
const ImagePrefix = "parts"

// Categories lists the accepted part categories.
var Categories = []string{"head", "shaft", "grip", "other"}

// ErrSupplierMissing indicates the supplier foreign key fired.
var ErrSupplierMissing = errors.New("parts: supplier does not exist")

// Part represents a part entity.
type Part struct {
	ID            int64
	Name          string
	Category      string
	SupplierID    int64
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	StockQuantity int64
	ReorderLevel  int64
	Description   string
	Image         *string
	CreatedBy     *int64
	UpdatedBy     *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Detail is a part with its references resolved.
type Detail struct {
	Part
	Supplier *suppliers.Supplier
	Creator  *users.Profile
	Updater  *users.Profile
}
