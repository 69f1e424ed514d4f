package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/domain"
	"github.com/jhoicas/tienda-admin-api/internal/domain/entity"
	"github.com/jhoicas/tienda-admin-api/internal/domain/rbac"
	"github.com/jhoicas/tienda-admin-api/internal/domain/repository"
)

// SettingsUseCase lectura y edición de la configuración de tienda (módulo settings).
type SettingsUseCase struct {
	repo  repository.SettingRepository
	audit *AuditUseCase
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(repo repository.SettingRepository, audit *AuditUseCase) *SettingsUseCase {
	return &SettingsUseCase{repo: repo, audit: audit}
}

// List devuelve la configuración. Requiere settings.view.
func (uc *SettingsUseCase) List(ctx context.Context, actor *rbac.Principal) (*dto.SettingsResponse, error) {
	if err := rbac.Require(actor, entity.ModuleSettings, entity.ActionView); err != nil {
		return nil, err
	}
	return uc.list(ctx)
}

func (uc *SettingsUseCase) list(ctx context.Context) (*dto.SettingsResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SettingResponse, 0, len(list))
	for _, s := range list {
		items = append(items, dto.SettingResponse{Key: s.Key, Value: s.Value, UpdatedBy: s.UpdatedBy, UpdatedAt: s.UpdatedAt})
	}
	return &dto.SettingsResponse{Items: items}, nil
}

// Update escribe las claves recibidas. Requiere settings.edit; claves desconocidas se rechazan sin escribir nada.
func (uc *SettingsUseCase) Update(ctx context.Context, actor *rbac.Principal, in dto.UpdateSettingsRequest) (*dto.SettingsResponse, error) {
	if err := rbac.Require(actor, entity.ModuleSettings, entity.ActionEdit); err != nil {
		return nil, err
	}
	if len(in.Settings) == 0 {
		return nil, fmt.Errorf("%w: settings vacío", domain.ErrInvalidInput)
	}
	keys := make([]string, 0, len(in.Settings))
	for k := range in.Settings {
		if !entity.IsKnownSetting(k) {
			return nil, fmt.Errorf("%w: clave desconocida %q", domain.ErrInvalidInput, k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now()
	batch := make([]*entity.Setting, 0, len(keys))
	for _, k := range keys {
		batch = append(batch, &entity.Setting{
			Key:       k,
			Value:     strings.TrimSpace(in.Settings[k]),
			UpdatedBy: actorID(actor),
			UpdatedAt: now,
		})
	}
	if err := uc.repo.Upsert(ctx, batch); err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, actorID(actor), "settings", "store", "update", strings.Join(keys, ","))
	return uc.list(ctx)
}
