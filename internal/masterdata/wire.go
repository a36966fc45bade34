package masterdata

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goayasushi/zaiko-be/internal/masterdata/parts"
	"github.com/goayasushi/zaiko-be/internal/masterdata/shared"
	"github.com/goayasushi/zaiko-be/internal/masterdata/suppliers"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
	"github.com/goayasushi/zaiko-be/internal/users"
)

// Deps carries what the master data services need at runtime.
type Deps struct {
	Pool     *pgxpool.Pool
	Users    *users.Service
	Store    storage.Store
	Purger   parts.ImagePurger
	Audit    internalShared.AuditRecorder
	Observer shared.BulkObserver
	Logger   *slog.Logger
}

// New wires the Postgres-backed suppliers and parts handlers.
func New(deps Deps) *Handler {
	supplierService := suppliers.NewService(suppliers.NewRepository(deps.Pool), deps.Audit, deps.Observer, deps.Logger)
	partService := parts.NewService(parts.NewRepository(deps.Pool), parts.Options{
		Suppliers: supplierService,
		Profiles:  deps.Users,
		Store:     deps.Store,
		Purger:    deps.Purger,
		Audit:     deps.Audit,
		Observer:  deps.Observer,
		Logger:    deps.Logger,
	})
	return NewHandler(
		suppliers.NewHandler(deps.Logger, supplierService),
		parts.NewHandler(deps.Logger, partService, deps.Store),
	)
}
