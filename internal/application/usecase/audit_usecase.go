package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
	"github.com/jhoicas/tienda-admin-api/pkg/logger"
)

// AuditUseCase registro y consulta del historial de acciones administrativas.
type AuditUseCase struct {
	repo repository.AuditRepository
	log  *logger.Logger
}

// NewAuditUseCase construye el caso de uso.
func NewAuditUseCase(repo repository.AuditRepository, log *logger.Logger) *AuditUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditUseCase{repo: repo, log: log}
}

// Record guarda una entrada. Un fallo de escritura solo se loguea: la auditoría no tumba la operación principal.
func (uc *AuditUseCase) Record(ctx context.Context, actorID *string, entityName, entityID, action, details string) {
	if uc == nil {
		return
	}
	l := &entity.AuditLog{
		ID:        uuid.New().String(),
		UserID:    actorID,
		Entity:    entityName,
		EntityID:  entityID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
	if err := uc.repo.Create(ctx, l); err != nil {
		uc.log.Error().Err(err).
			Str("entity", entityName).
			Str("entity_id", entityID).
			Str("action", action).
			Msg("no se pudo registrar auditoría")
	}
}

// List devuelve el historial paginado. Requiere settings.view.
func (uc *AuditUseCase) List(ctx context.Context, actor *rbac.Principal, page dto.PageRequest) (*dto.AuditListResponse, error) {
	if err := rbac.Require(actor, entity.ModuleSettings, entity.ActionView); err != nil {
		return nil, err
	}
	page.Normalize()
	list, total, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(list))
	for _, l := range list {
		items = append(items, dto.AuditLogResponse{
			ID:        l.ID,
			UserID:    l.UserID,
			Entity:    l.Entity,
			EntityID:  l.EntityID,
			Action:    l.Action,
			Details:   l.Details,
			CreatedAt: l.CreatedAt,
		})
	}
	return &dto.AuditListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func actorID(p *rbac.Principal) *string {
	if p == nil {
		return nil
	}
	id := p.UserID
	return &id
}
