package entity

import "time"

// Claves de configuración de tienda conocidas.
const (
	SettingStoreName    = "store_name"
	SettingCurrency     = "currency"
	SettingSupportEmail = "support_email"
	SettingTimezone     = "timezone"
)

// IsKnownSetting informa si key es una clave de configuración admitida.
func IsKnownSetting(key string) bool {
	switch key {
	case SettingStoreName, SettingCurrency, SettingSupportEmail, SettingTimezone:
		return true
	}
	return false
}

// Setting par clave/valor de configuración de la tienda.
type Setting struct {
	Key       string
	Value     string
	UpdatedBy *string
	UpdatedAt time.Time
}
