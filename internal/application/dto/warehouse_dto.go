package dto

import "github.com/jhoicas/conteo-inventario/internal/domain/entity"

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// WarehouseListResponse bodegas de la empresa para el selector de alcance.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
}

// FromWarehouses convierte entidades de bodega.
func FromWarehouses(list []*entity.Warehouse) []WarehouseResponse {
	out := make([]WarehouseResponse, 0, len(list))
	for _, w := range list {
		out = append(out, WarehouseResponse{ID: w.ID, Name: w.Name, Address: w.Address})
	}
	return out
}
