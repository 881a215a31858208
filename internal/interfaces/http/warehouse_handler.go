package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

// WarehouseHandler expone las bodegas de la empresa para elegir el alcance del conteo.
type WarehouseHandler struct {
	repo repository.WarehouseRepository
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(repo repository.WarehouseRepository) *WarehouseHandler {
	return &WarehouseHandler{repo: repo}
}

// List godoc
// @Summary      Listar bodegas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.WarehouseListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	list, err := h.repo.ListByCompany(c.Context(), GetCompanyID(c))
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CATALOG_UNAVAILABLE", Message: err.Error()})
	}
	return c.JSON(dto.WarehouseListResponse{Items: dto.FromWarehouses(list)})
}
