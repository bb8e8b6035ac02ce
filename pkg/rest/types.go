// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

import (
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Offer Объявление площадки
type Offer struct {
	ID             string          `json:"id"`
	Side           string          `json:"side"`
	Price          jsoniter.Number `json:"price"`
	MinAmount      jsoniter.Number `json:"min_amount"`
	MaxAmount      jsoniter.Number `json:"max_amount"`
	Quantity       jsoniter.Number `json:"quantity"`
	Maker          string          `json:"maker"`
	MakerID        string          `json:"maker_id"`
	PaymentMethods []string        `json:"payment_methods"`
	CompletionRate int             `json:"completion_rate"`
	TotalOrders    int             `json:"total_orders"`
	IsMerchant     bool            `json:"is_merchant"`
	IsBlockTrade   bool            `json:"is_block_trade"`
	// MerchantType gold, silver, bronze, block_trade или null
	MerchantType  *string `json:"merchant_type"`
	MerchantBadge *string `json:"merchant_badge"`
	IsOnline      bool    `json:"is_online"`
	IsTriangle    bool    `json:"is_triangle"`
	LastLogout    string  `json:"last_logout_time,omitempty"`
}

// OffersResponse Список объявлений стороны
type OffersResponse struct {
	Success           bool      `json:"success"`
	Offers            []Offer   `json:"offers"`
	Total             int       `json:"total"`
	Side              string    `json:"side"`
	PagesLoaded       int       `json:"pages_loaded"`
	Source            string    `json:"source"`
	Degraded          bool      `json:"degraded"`
	CapturedAt        time.Time `json:"captured_at"`
	AutoUpdateEnabled bool      `json:"auto_update_enabled"`
}

// SideStatus Состояние данных одной стороны
type SideStatus struct {
	Side        string     `json:"side"`
	LastUpdate  *time.Time `json:"last_update"`
	OffersCount int        `json:"offers_count"`
	AgeSeconds  *float64   `json:"age_seconds"`
	// CacheAgeSeconds null, если в памяти процесса данных нет
	CacheAgeSeconds *float64 `json:"cache_age_seconds"`
}

// EgressStats Статистика исходящих запросов
type EgressStats struct {
	TotalRequests      uint64  `json:"total_requests"`
	ProxyRequests      uint64  `json:"proxy_requests"`
	DirectRequests     uint64  `json:"direct_requests"`
	ProxyErrors        uint64  `json:"proxy_errors"`
	SuccessfulRequests uint64  `json:"successful_requests"`
	SuccessRate        float64 `json:"success_rate"`
	ProxyUsageRate     float64 `json:"proxy_usage_rate"`
}

// StatusResponse Ответ на запрос статуса
type StatusResponse struct {
	Success           bool         `json:"success"`
	AutoUpdateEnabled bool         `json:"auto_update_enabled"`
	StoreAvailable    bool         `json:"store_available"`
	Sides             []SideStatus `json:"sides"`
	Stats             EgressStats  `json:"stats"`
}

// SettingsRequest Изменение системной настройки
type SettingsRequest struct {
	Action  string `json:"action" validate:"required,oneof=toggle_auto_update"`
	Enabled *bool  `json:"enabled" validate:"required"`
}

// SettingsResponse Результат изменения настройки
type SettingsResponse struct {
	Success           bool `json:"success"`
	AutoUpdateEnabled bool `json:"auto_update_enabled"`
}

// Error Модель ошибок
type Error struct {
	Success bool `json:"success"`

	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	// SupportID Идентификатор запроса для обращения в поддержку
	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string
