package entity

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/tienda-admin-api/internal/domain"
)

// Module área de recursos protegida por RBAC.
type Module string

// Action operación dentro de un módulo.
type Action string

const (
	ModuleUser      Module = "user"
	ModuleCategory  Module = "category"
	ModuleProduct   Module = "product"
	ModuleOrder     Module = "order"
	ModuleInventory Module = "inventory"
	ModuleAnalytics Module = "analytics"
	ModuleSettings  Module = "settings"
)

const (
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionEdit         Action = "edit"
	ActionDelete       Action = "delete"
	ActionChangeRole   Action = "change_role"
	ActionUpdateStatus Action = "update_status"
	ActionExport       Action = "export"
)

// ModuleSchema acciones válidas de un módulo, en orden estable.
type ModuleSchema struct {
	Module  Module   `json:"module"`
	Actions []Action `json:"actions"`
}

// permissionSchema es la forma fija de la matriz. Debe coincidir con los campos de PermissionMatrix.
var permissionSchema = []ModuleSchema{
	{ModuleUser, []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionChangeRole}},
	{ModuleCategory, []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ModuleProduct, []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ModuleOrder, []Action{ActionView, ActionCreate, ActionEdit, ActionDelete, ActionUpdateStatus}},
	{ModuleInventory, []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}},
	{ModuleAnalytics, []Action{ActionView, ActionExport}},
	{ModuleSettings, []Action{ActionView, ActionEdit}},
}

// PermissionSchema devuelve una copia del catálogo módulo → acciones.
func PermissionSchema() []ModuleSchema {
	out := make([]ModuleSchema, len(permissionSchema))
	for i, m := range permissionSchema {
		out[i] = ModuleSchema{Module: m.Module, Actions: append([]Action(nil), m.Actions...)}
	}
	return out
}

type CRUDPermissions struct {
	View   bool `json:"view"`
	Create bool `json:"create"`
	Edit   bool `json:"edit"`
	Delete bool `json:"delete"`
}

type UserPermissions struct {
	View       bool `json:"view"`
	Create     bool `json:"create"`
	Edit       bool `json:"edit"`
	Delete     bool `json:"delete"`
	ChangeRole bool `json:"change_role"`
}

type OrderPermissions struct {
	View         bool `json:"view"`
	Create       bool `json:"create"`
	Edit         bool `json:"edit"`
	Delete       bool `json:"delete"`
	UpdateStatus bool `json:"update_status"`
}

type AnalyticsPermissions struct {
	View   bool `json:"view"`
	Export bool `json:"export"`
}

type SettingsPermissions struct {
	View bool `json:"view"`
	Edit bool `json:"edit"`
}

// PermissionMatrix matriz completa módulo × acción. Cada entrada existe siempre y vale false por defecto.
type PermissionMatrix struct {
	User      UserPermissions      `json:"user"`
	Category  CRUDPermissions      `json:"category"`
	Product   CRUDPermissions      `json:"product"`
	Order     OrderPermissions     `json:"order"`
	Inventory CRUDPermissions      `json:"inventory"`
	Analytics AnalyticsPermissions `json:"analytics"`
	Settings  SettingsPermissions  `json:"settings"`
}

// FullPermissions devuelve una matriz con todas las acciones concedidas (rol super_admin).
func FullPermissions() PermissionMatrix {
	var m PermissionMatrix
	for _, ms := range permissionSchema {
		for _, a := range ms.Actions {
			*m.cell(ms.Module, a) = true
		}
	}
	return m
}

// Lookup devuelve el valor de module.action y si el par existe en el esquema.
func (m PermissionMatrix) Lookup(module Module, action Action) (allowed, known bool) {
	c := m.cell(module, action)
	if c == nil {
		return false, false
	}
	return *c, true
}

// Set asigna module.action. Devuelve ErrUnknownPermission si el par no existe.
func (m *PermissionMatrix) Set(module Module, action Action, value bool) error {
	c := m.cell(module, action)
	if c == nil {
		return fmt.Errorf("%w: %s.%s", domain.ErrUnknownPermission, module, action)
	}
	*c = value
	return nil
}

// Granted lista los permisos concedidos como "module.action" (útil para logs y tests).
func (m PermissionMatrix) Granted() []string {
	var out []string
	for _, ms := range permissionSchema {
		for _, a := range ms.Actions {
			if ok, _ := m.Lookup(ms.Module, a); ok {
				out = append(out, string(ms.Module)+"."+string(a))
			}
		}
	}
	return out
}

func (m *PermissionMatrix) cell(module Module, action Action) *bool {
	switch module {
	case ModuleUser:
		p := &m.User
		switch action {
		case ActionView:
			return &p.View
		case ActionCreate:
			return &p.Create
		case ActionEdit:
			return &p.Edit
		case ActionDelete:
			return &p.Delete
		case ActionChangeRole:
			return &p.ChangeRole
		}
	case ModuleCategory:
		return crudCell(&m.Category, action)
	case ModuleProduct:
		return crudCell(&m.Product, action)
	case ModuleInventory:
		return crudCell(&m.Inventory, action)
	case ModuleOrder:
		p := &m.Order
		switch action {
		case ActionView:
			return &p.View
		case ActionCreate:
			return &p.Create
		case ActionEdit:
			return &p.Edit
		case ActionDelete:
			return &p.Delete
		case ActionUpdateStatus:
			return &p.UpdateStatus
		}
	case ModuleAnalytics:
		switch action {
		case ActionView:
			return &m.Analytics.View
		case ActionExport:
			return &m.Analytics.Export
		}
	case ModuleSettings:
		switch action {
		case ActionView:
			return &m.Settings.View
		case ActionEdit:
			return &m.Settings.Edit
		}
	}
	return nil
}

func crudCell(p *CRUDPermissions, action Action) *bool {
	switch action {
	case ActionView:
		return &p.View
	case ActionCreate:
		return &p.Create
	case ActionEdit:
		return &p.Edit
	case ActionDelete:
		return &p.Delete
	}
	return nil
}

// matrixAlias evita la recursión de UnmarshalJSON.
type matrixAlias PermissionMatrix

// UnmarshalJSON completa con false las claves omitidas y rechaza módulos o acciones fuera del esquema.
// Se usa tanto al leer cuerpos HTTP como al escanear la columna JSONB.
func (m *PermissionMatrix) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := checkMatrixKeys(data); err != nil {
		return err
	}
	var out matrixAlias
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPermissionShape, err)
	}
	*m = PermissionMatrix(out)
	return nil
}

// checkMatrixKeys exige coincidencia exacta de claves: encoding/json ignora mayúsculas al asociar campos.
func checkMatrixKeys(data []byte) error {
	var modules map[string]json.RawMessage
	if err := json.Unmarshal(data, &modules); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPermissionShape, err)
	}
	for mk, raw := range modules {
		ms, ok := schemaFor(Module(mk))
		if !ok {
			return fmt.Errorf("%w: módulo desconocido %q", domain.ErrInvalidPermissionShape, mk)
		}
		var actions map[string]json.RawMessage
		if err := json.Unmarshal(raw, &actions); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrInvalidPermissionShape, mk, err)
		}
		for ak := range actions {
			if !ms.has(Action(ak)) {
				return fmt.Errorf("%w: acción desconocida %s.%s", domain.ErrInvalidPermissionShape, mk, ak)
			}
		}
	}
	return nil
}

func schemaFor(module Module) (ModuleSchema, bool) {
	for _, ms := range permissionSchema {
		if ms.Module == module {
			return ms, true
		}
	}
	return ModuleSchema{}, false
}

func (ms ModuleSchema) has(action Action) bool {
	for _, a := range ms.Actions {
		if a == action {
			return true
		}
	}
	return false
}
