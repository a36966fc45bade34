package suppliers

import (
	"context"

	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
)

const msgCodeTaken = "この取引先コードは既に使用されています。"

// Writable field names.
const (
	FieldSupplierCode  = "supplier_code"
	FieldName          = "name"
	FieldContactPerson = "contact_person"
	FieldPhone         = "phone"
	FieldFax           = "fax"
	FieldEmail         = "email"
	FieldPostalCode    = "postal_code"
	FieldPrefecture    = "prefecture"
	FieldCity          = "city"
	FieldTown          = "town"
	FieldBuilding      = "building"
	FieldWebsite       = "website"
	FieldRemarks       = "remarks"
)

// rules returns the field table. excludeID is the record being updated, or 0.
func (s *Service) rules(excludeID int64) []shared.FieldRule {
	return []shared.FieldRule{
		{Name: FieldSupplierCode, Kind: shared.KindString, MaxLength: 50, AllowBlank: true, BlankAsNull: true, Nullable: true, Check: s.codeAvailable(excludeID)},
		{Name: FieldName, Kind: shared.KindString, Required: true, MaxLength: 200},
		{Name: FieldContactPerson, Kind: shared.KindString, MaxLength: 100, AllowBlank: true, Default: ""},
		{Name: FieldPhone, Kind: shared.KindString, Required: true, MaxLength: 50},
		{Name: FieldFax, Kind: shared.KindString, MaxLength: 50, AllowBlank: true, Default: ""},
		{Name: FieldEmail, Kind: shared.KindEmail, Required: true, MaxLength: 254},
		{Name: FieldPostalCode, Kind: shared.KindString, Required: true, MaxLength: 10},
		{Name: FieldPrefecture, Kind: shared.KindString, Required: true, MaxLength: 50},
		{Name: FieldCity, Kind: shared.KindString, Required: true, MaxLength: 100},
		{Name: FieldTown, Kind: shared.KindString, Required: true, MaxLength: 200},
		{Name: FieldBuilding, Kind: shared.KindString, MaxLength: 200, AllowBlank: true, Default: ""},
		{Name: FieldWebsite, Kind: shared.KindURL, MaxLength: 200, AllowBlank: true, Default: ""},
		{Name: FieldRemarks, Kind: shared.KindString, AllowBlank: true, Default: ""},
	}
}

func (s *Service) codeAvailable(excludeID int64) shared.CheckFunc {
	return func(ctx context.Context, value any) (string, error) {
		code, _ := value.(string)
		taken, err := s.repo.CodeExists(ctx, code, excludeID)
		if err != nil {
			return "", err
		}
		if taken {
			return msgCodeTaken, nil
		}
		return "", nil
	}
}

// apply copies accepted values onto sup.
func apply(values shared.Values, sup *Supplier) {
	if values.Has(FieldSupplierCode) {
		sup.SupplierCode = values.NullableString(FieldSupplierCode)
	}
	fields := map[string]*string{
		FieldName:          &sup.Name,
		FieldContactPerson: &sup.ContactPerson,
		FieldPhone:         &sup.Phone,
		FieldFax:           &sup.Fax,
		FieldEmail:         &sup.Email,
		FieldPostalCode:    &sup.PostalCode,
		FieldPrefecture:    &sup.Prefecture,
		FieldCity:          &sup.City,
		FieldTown:          &sup.Town,
		FieldBuilding:      &sup.Building,
		FieldWebsite:       &sup.Website,
		FieldRemarks:       &sup.Remarks,
	}
	for name, dst := range fields {
		if values.Has(name) {
			*dst = values.String(name)
		}
	}
}
