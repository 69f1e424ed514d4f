package dto

import "time"

// UpdateSettingsRequest claves a escribir; las no incluidas no cambian.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings"`
}

// SettingResponse una clave de configuración.
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedBy *string   `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingsResponse configuración completa de la tienda.
type SettingsResponse struct {
	Items []SettingResponse `json:"items"`
}
