package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
)

// OpenWorkspaceRequest body para POST /api/inventory/workspaces. warehouse_id vacío = todas las bodegas.
type OpenWorkspaceRequest struct {
	WarehouseID string `json:"warehouse_id"`
}

// SetScopeRequest body para PUT /api/inventory/workspaces/:id/scope.
type SetScopeRequest struct {
	WarehouseID string `json:"warehouse_id"`
}

// SetFilterRequest body para PUT /api/inventory/workspaces/:id/filter.
type SetFilterRequest struct {
	Search        string `json:"search"`
	VariancesOnly bool   `json:"variances_only"`
}

// SelectionRequest body para POST /api/inventory/workspaces/:id/selection.
// all=true selecciona solo lo visible con el filtro actual.
type SelectionRequest struct {
	ProductIDs []string `json:"product_ids"`
	All        bool     `json:"all"`
}

// SelectionResponse cantidad seleccionada tras la operación.
type SelectionResponse struct {
	Selected int `json:"selected"`
}

// UpdateItemRequest body para PUT /api/inventory/workspaces/:id/items/:product_id.
// Las cantidades llegan como texto tal cual se digitan ("12,5" o "12.5"); nil = sin cambio.
type UpdateItemRequest struct {
	PhysicalCount  *string `json:"physical_count"`
	Shrinkage      *string `json:"shrinkage"`
	ShrinkageNotes *string `json:"shrinkage_notes"`
}

// SaveWorkspaceRequest body para POST /api/inventory/workspaces/:id/save.
type SaveWorkspaceRequest struct {
	DateRange string `json:"date_range"`
}

// InventoryItemResponse línea de conteo (borrador o guardada).
type InventoryItemResponse struct {
	ProductID      string          `json:"product_id"`
	SKU            string          `json:"sku"`
	ProductName    string          `json:"product_name"`
	SystemStock    decimal.Decimal `json:"system_stock"`
	PhysicalCount  decimal.Decimal `json:"physical_count"`
	Shrinkage      decimal.Decimal `json:"shrinkage"`
	ShrinkageNotes string          `json:"shrinkage_notes,omitempty"`
	Variance       decimal.Decimal `json:"variance"`
	VarianceType   string          `json:"variance_type"`
}

// WorkspaceRowResponse fila visible del espacio de conteo.
type WorkspaceRowResponse struct {
	ProductID   string                 `json:"product_id"`
	SKU         string                 `json:"sku"`
	Name        string                 `json:"name"`
	SystemStock decimal.Decimal        `json:"system_stock"`
	Selected    bool                   `json:"selected"`
	Item        *InventoryItemResponse `json:"item,omitempty"`
}

// WorkspaceResponse estado del espacio de conteo.
type WorkspaceResponse struct {
	ID            string                 `json:"id"`
	Scope         string                 `json:"scope"`
	Filter        SetFilterRequest       `json:"filter"`
	Warehouses    []WarehouseResponse    `json:"warehouses"`
	Rows          []WorkspaceRowResponse `json:"rows"`
	SelectedCount int                    `json:"selected_count"`
	VisibleStock  decimal.Decimal        `json:"visible_stock"`
	Blocked       string                 `json:"blocked,omitempty"`
	TouchedAt     time.Time              `json:"touched_at"`
}

// FromItem convierte una línea de conteo.
func FromItem(it entity.InventoryItem) InventoryItemResponse {
	return InventoryItemResponse{
		ProductID:      it.ProductID,
		SKU:            it.SKU,
		ProductName:    it.ProductName,
		SystemStock:    it.SystemStock,
		PhysicalCount:  it.PhysicalCount,
		Shrinkage:      it.Shrinkage,
		ShrinkageNotes: it.ShrinkageNotes,
		Variance:       it.Variance,
		VarianceType:   string(it.VarianceType),
	}
}

// FromSnapshot convierte el estado del espacio de conteo.
func FromSnapshot(s inventory.WorkspaceSnapshot) WorkspaceResponse {
	rows := make([]WorkspaceRowResponse, 0, len(s.Rows))
	for _, r := range s.Rows {
		row := WorkspaceRowResponse{
			ProductID:   r.ProductID,
			SKU:         r.SKU,
			Name:        r.Name,
			SystemStock: r.SystemStock,
			Selected:    r.Selected,
		}
		if r.Item != nil {
			item := FromItem(*r.Item)
			row.Item = &item
		}
		rows = append(rows, row)
	}
	out := WorkspaceResponse{
		ID:            s.ID,
		Scope:         s.Scope.String(),
		Filter:        SetFilterRequest{Search: s.Filter.Search, VariancesOnly: s.Filter.VariancesOnly},
		Warehouses:    FromWarehouses(s.Warehouses),
		Rows:          rows,
		SelectedCount: s.SelectedCount,
		VisibleStock:  s.VisibleStock,
		TouchedAt:     s.TouchedAt,
	}
	if s.Blocked != nil {
		out.Blocked = s.Blocked.Error()
	}
	return out
}
