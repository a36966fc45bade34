package shared

import (
	"context"
	"log/slog"
	"strconv"

	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
)

// Audit writes audit logs for one entity. Failures are logged, never returned.
type Audit struct {
	recorder internalShared.AuditRecorder
	entity   string
	logger   *slog.Logger
}

// NewAudit constructs an Audit. A nil recorder disables it.
func NewAudit(recorder internalShared.AuditRecorder, entity string, logger *slog.Logger) Audit {
	if logger == nil {
		logger = slog.Default()
	}
	return Audit{recorder: recorder, entity: entity, logger: logger}
}

// Record stores action on id, stamped with the acting user. An id of 0
// marks a multi-record action.
func (a Audit) Record(ctx context.Context, action string, id int64, meta map[string]any) {
	if a.recorder == nil {
		return
	}
	actor, _ := internalShared.ActorFromContext(ctx)
	entityID := "*"
	if id > 0 {
		entityID = strconv.FormatInt(id, 10)
	}
	err := a.recorder.Record(ctx, internalShared.AuditLog{ActorID: actor, Action: action, Entity: a.entity, EntityID: entityID, Meta: meta})
	if err != nil {
		a.logger.Warn("record audit log", slog.String("entity", a.entity), slog.String("action", action), slog.Any("error", err))
	}
}
