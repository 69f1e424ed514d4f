package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/tienda-admin-api/internal/application/dto"
	"github.com/jhoicas/tienda-admin-api/internal/application/usecase"
)

// RoleHandler endpoints de roles y matriz de permisos.
type RoleHandler struct {
	uc *usecase.RoleUseCase
}

// NewRoleHandler construye el handler.
func NewRoleHandler(uc *usecase.RoleUseCase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

// List godoc
// @Summary      Listar roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dto.RoleListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/roles [get]
func (h *RoleHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Schema godoc
// @Summary      Módulos y acciones de la matriz de permisos
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  entity.ModuleSchema
// @Router       /api/roles/schema [get]
func (h *RoleHandler) Schema(c *fiber.Ctx) error {
	return c.JSON(h.uc.Schema())
}

// GetByID godoc
// @Summary      Obtener rol
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del rol"
// @Success      200  {object}  dto.RoleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/roles/{id} [get]
func (h *RoleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear rol
// @Description  name debe ser uno de admin, manager, support, viewer. Las acciones omitidas quedan en false.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateRoleRequest  true  "Rol"
// @Success      201   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/roles [post]
func (h *RoleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRoleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ReplacePermissions godoc
// @Summary      Reemplazar la matriz de permisos de un rol
// @Description  Reemplazo completo: lo que no venga en permissions queda en false.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                         true  "ID del rol"
// @Param        body  body  dto.ReplacePermissionsRequest  true  "Matriz"
// @Success      200   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/roles/{id}/permissions [put]
func (h *RoleHandler) ReplacePermissions(c *fiber.Ctx) error {
	var in dto.ReplacePermissionsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if in.Permissions == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "permissions es requerido"})
	}
	out, err := h.uc.ReplacePermissions(c.UserContext(), GetPrincipal(c), c.Params("id"), *in.Permissions)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetStatus godoc
// @Summary      Activar o desactivar un rol
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string                 true  "ID del rol"
// @Param        body  body  dto.RoleStatusRequest  true  "is_active"
// @Success      200   {object}  dto.RoleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/roles/{id}/status [patch]
func (h *RoleHandler) SetStatus(c *fiber.Ctx) error {
	var in dto.RoleStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c, err)
	}
	if in.IsActive == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "is_active es requerido"})
	}
	out, err := h.uc.SetActive(c.UserContext(), GetPrincipal(c), c.Params("id"), *in.IsActive)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
