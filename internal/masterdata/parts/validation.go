package parts

import (
	"context"
	"strconv"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
)

const (
	maxDigits     = 12
	decimalPlaces = 2

	msgEmptyFile = "送信されたファイルは空です。"
)

// Writable field names.
const (
	FieldName          = "name"
	FieldCategory      = "category"
	FieldSupplierID    = "supplier_id"
	FieldCostPrice     = "cost_price"
	FieldSellingPrice  = "selling_price"
	FieldStockQuantity = "stock_quantity"
	FieldReorderLevel  = "reorder_level"
	FieldDescription   = "description"
	FieldImage         = "image"
)

func (s *Service) rules() []shared.FieldRule {
	return []shared.FieldRule{
		{Name: FieldName, Kind: shared.KindString, Required: true, MaxLength: 200},
		{Name: FieldCategory, Kind: shared.KindChoice, Required: true, Choices: Categories},
		{Name: FieldSupplierID, Kind: shared.KindReference, Required: true, Check: s.supplierExists},
		priceRule(FieldCostPrice),
		priceRule(FieldSellingPrice),
		quantityRule(FieldStockQuantity),
		quantityRule(FieldReorderLevel),
		{Name: FieldDescription, Kind: shared.KindString, AllowBlank: true, Default: ""},
	}
}

func priceRule(name string) shared.FieldRule {
	return shared.FieldRule{
		Name:          name,
		Kind:          shared.KindDecimal,
		Required:      true,
		MaxDigits:     maxDigits,
		DecimalPlaces: decimalPlaces,
		Min:           shared.Limit(0),
	}
}

func quantityRule(name string) shared.FieldRule {
	return shared.FieldRule{
		Name:        name,
		Kind:        shared.KindInteger,
		Min:         shared.Limit(0),
		Max:         shared.Limit(shared.MaxInteger),
		EmptyAsZero: true,
		Default:     int64(0),
	}
}

func (s *Service) supplierExists(ctx context.Context, value any) (string, error) {
	id, _ := value.(int64)
	ok, err := s.suppliers.Exists(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return shared.MsgPKDoesNotExist(strconv.FormatInt(id, 10)), nil
	}
	return "", nil
}

// imageChange is the requested change to a part's image.
type imageChange struct {
	present bool
	image   *storage.Image
}

// readImage inspects the image field of req. Files win over form values.
func readImage(req shared.Request) (imageChange, string) {
	if upload, ok := req.Files[FieldImage]; ok {
		if len(upload.Data) == 0 {
			return imageChange{}, msgEmptyFile
		}
		img, err := storage.DetectImage(upload.Data)
		if err != nil {
			return imageChange{}, shared.MsgInvalidImage
		}
		return imageChange{present: true, image: &img}, ""
	}
	raw, ok := req.Fields[FieldImage]
	if !ok {
		return imageChange{}, ""
	}
	if raw == nil {
		return imageChange{present: true}, ""
	}
	if s, isString := raw.(string); isString && s == "" {
		return imageChange{present: true}, ""
	}
	return imageChange{}, shared.MsgNotAFile
}

// apply copies accepted values onto p.
func apply(values shared.Values, p *Part) {
	if values.Has(FieldName) {
		p.Name = values.String(FieldName)
	}
	if values.Has(FieldCategory) {
		p.Category = values.String(FieldCategory)
	}
	if values.Has(FieldSupplierID) {
		p.SupplierID = values.Int(FieldSupplierID)
	}
	if values.Has(FieldCostPrice) {
		p.CostPrice = values.Decimal(FieldCostPrice)
	}
	if values.Has(FieldSellingPrice) {
		p.SellingPrice = values.Decimal(FieldSellingPrice)
	}
	if values.Has(FieldStockQuantity) {
		p.StockQuantity = values.Int(FieldStockQuantity)
	}
	if values.Has(FieldReorderLevel) {
		p.ReorderLevel = values.Int(FieldReorderLevel)
	}
	if values.Has(FieldDescription) {
		p.Description = values.String(FieldDescription)
	}
}
