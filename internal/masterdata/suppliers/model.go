package suppliers

import (
	"errors"
	"time"
)

// ErrCodeTaken indicates the supplier_code unique constraint fired.
var ErrCodeTaken = errors.New("suppliers: supplier code taken")

// Supplier represents a supplier entity.
type Supplier struct {
	ID            int64     `json:"id"`
	SupplierCode  *string   `json:"supplier_code"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Fax           string    `json:"fax"`
	Email         string    `json:"email"`
	PostalCode    string    `json:"postal_code"`
	Prefecture    string    `json:"prefecture"`
	City          string    `json:"city"`
	Town          string    `json:"town"`
	Building      string    `json:"building"`
	Website       string    `json:"website"`
	Remarks       string    `json:"remarks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Entity is the audit log entity name.
const Entity = "supplier"
