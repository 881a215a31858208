package dto

import (
	"time"

	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// ForceCloseRequest body para POST /api/inventory/counts/:id/force-close.
type ForceCloseRequest struct {
	Reason string `json:"reason"`
}

// CountResponse conteo físico guardado.
type CountResponse struct {
	ID             string                  `json:"id"`
	DateRange      string                  `json:"date_range"`
	Scope          string                  `json:"scope"`
	Status         string                  `json:"status"`
	TotalProducts  int                     `json:"total_products"`
	TotalVariances int                     `json:"total_variances"`
	CreatedBy      string                  `json:"created_by,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	ClosedBy       string                  `json:"closed_by,omitempty"`
	ClosedAt       *time.Time              `json:"closed_at,omitempty"`
	CloseMode      string                  `json:"close_mode,omitempty"`
	CloseReason    string                  `json:"close_reason,omitempty"`
	Items          []InventoryItemResponse `json:"items,omitempty"`
}

// CountListResponse lista paginada de conteos.
type CountListResponse struct {
	Items []CountResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}

// AckResponse resultado de una confirmación de impresión.
type AckResponse struct {
	CountID   string `json:"count_id"`
	Published bool   `json:"published"`
}

// FromCount convierte un conteo con sus ítems.
func FromCount(c *entity.InventoryCount) CountResponse {
	out := CountResponse{
		ID:             c.ID,
		DateRange:      c.DateRange,
		Scope:          c.Scope.String(),
		Status:         c.Status,
		TotalProducts:  c.TotalProducts,
		TotalVariances: c.TotalVariances,
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt,
		ClosedBy:       c.ClosedBy,
		ClosedAt:       c.ClosedAt,
		CloseMode:      c.CloseMode,
		CloseReason:    c.CloseReason,
	}
	if len(c.Items) > 0 {
		out.Items = make([]InventoryItemResponse, 0, len(c.Items))
		for _, it := range c.Items {
			out.Items = append(out.Items, FromItem(it))
		}
	}
	return out
}
