package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain"
	"github.com/jhoicas/conteo-inventario/internal/domain/entity"
	domaininv "github.com/jhoicas/conteo-inventario/internal/domain/inventory"
)

// WorkspaceHandler maneja el espacio de conteo en curso de cada sesión.
type WorkspaceHandler struct {
	uc *inventory.WorkspaceUseCase
}

// NewWorkspaceHandler construye el handler.
func NewWorkspaceHandler(uc *inventory.WorkspaceUseCase) *WorkspaceHandler {
	return &WorkspaceHandler{uc: uc}
}

func (h *WorkspaceHandler) workspace(c *fiber.Ctx) (*inventory.Workspace, error) {
	return h.uc.Get(GetCompanyID(c), GetUserID(c), c.Params("id"))
}

func snapshot(c *fiber.Ctx, status int, ws *inventory.Workspace) error {
	return c.Status(status).JSON(dto.FromSnapshot(ws.Snapshot()))
}

// Open godoc
// @Summary      Abrir espacio de conteo
// @Description  Carga el catálogo completo de la empresa. warehouse_id vacío cuenta todas las bodegas.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenWorkspaceRequest  false  "Alcance inicial"
// @Success      201   {object}  dto.WorkspaceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces [post]
func (h *WorkspaceHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenWorkspaceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	ws, err := h.uc.Open(c.Context(), GetCompanyID(c), GetUserID(c), entity.WarehouseScope(strings.TrimSpace(in.WarehouseID)))
	if err != nil {
		return writeError(c, err)
	}
	return snapshot(c, fiber.StatusCreated, ws)
}

// Get godoc
// @Summary      Estado del espacio de conteo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del espacio"
// @Success      200  {object}  dto.WorkspaceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces/{id} [get]
func (h *WorkspaceHandler) Get(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return writeError(c, err)
	}
	return snapshot(c, fiber.StatusOK, ws)
}

// SetScope godoc
// @Summary      Cambiar bodega del conteo
// @Description  Recalcula el stock del sistema de todos los borradores.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del espacio"
// @Param        body  body  dto.SetScopeRequest   true  "Alcance"
// @Success      200   {object}  dto.WorkspaceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces/{id}/scope [put]
func (h *WorkspaceHandler) SetScope(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SetScopeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := ws.SetScope(entity.WarehouseScope(strings.TrimSpace(in.WarehouseID))); err != nil {
		return writeError(c, err)
	}
	return snapshot(c, fiber.StatusOK, ws)
}

// SetFilter godoc
// @Summary      Filtrar la lista visible
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del espacio"
// @Param        body  body  dto.SetFilterRequest  true  "Filtro"
// @Success      200   {object}  dto.WorkspaceResponse
// @Router       /api/inventory/workspaces/{id}/filter [put]
func (h *WorkspaceHandler) SetFilter(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SetFilterRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := ws.SetFilter(inventory.Filter{Search: in.Search, VariancesOnly: in.VariancesOnly}); err != nil {
		return writeError(c, err)
	}
	return snapshot(c, fiber.StatusOK, ws)
}

// Select godoc
// @Summary      Seleccionar productos
// @Description  all=true selecciona solo los productos visibles con el filtro actual.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del espacio"
// @Param        body  body  dto.SelectionRequest  true  "Selección"
// @Success      200   {object}  dto.SelectionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces/{id}/selection [post]
func (h *WorkspaceHandler) Select(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.SelectionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.All {
		if _, err := ws.SelectAll(); err != nil {
			return writeError(c, err)
		}
	}
	for _, id := range in.ProductIDs {
		if err := ws.Select(id); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(dto.SelectionResponse{Selected: ws.Snapshot().SelectedCount})
}

// ClearSelection godoc
// @Summary      Deseleccionar todo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del espacio"
// @Success      200  {object}  dto.SelectionResponse
// @Router       /api/inventory/workspaces/{id}/selection [delete]
func (h *WorkspaceHandler) ClearSelection(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := ws.ClearSelection(); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SelectionResponse{Selected: 0})
}

// Deselect godoc
// @Summary      Quitar un producto de la selección
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id          path  string  true  "ID del espacio"
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.SelectionResponse
// @Router       /api/inventory/workspaces/{id}/selection/{product_id} [delete]
func (h *WorkspaceHandler) Deselect(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := ws.Deselect(c.Params("product_id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SelectionResponse{Selected: ws.Snapshot().SelectedCount})
}

// UpdateItem godoc
// @Summary      Registrar conteo físico, merma o notas de un producto
// @Description  Las cantidades se envían como texto ("12,5" o "12.5"). Campos omitidos no cambian.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id          path  string                 true  "ID del espacio"
// @Param        product_id  path  string                 true  "ID del producto"
// @Param        body        body  dto.UpdateItemRequest  true  "Valores"
// @Success      200  {object}  dto.InventoryItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces/{id}/items/{product_id} [put]
func (h *WorkspaceHandler) UpdateItem(c *fiber.Ctx) error {
	ws, err := h.workspace(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.PhysicalCount == nil && in.Shrinkage == nil && in.ShrinkageNotes == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "no hay cambios"})
	}
	productID := c.Params("product_id")

	// Validar todo antes de tocar el borrador
	physical, err := parseQuantity(in.PhysicalCount)
	if err != nil {
		return writeError(c, err)
	}
	shrinkage, err := parseQuantity(in.Shrinkage)
	if err != nil {
		return writeError(c, err)
	}
	effective := decimal.Zero
	if current, ok := ws.Item(productID); ok {
		effective = current.Shrinkage
	}
	if shrinkage != nil {
		effective = *shrinkage
	}
	var notes string
	if in.ShrinkageNotes != nil {
		notes = strings.TrimSpace(*in.ShrinkageNotes)
		if notes != "" && !effective.IsPositive() {
			return writeError(c, domain.ErrShrinkageNotesDisabled)
		}
	}

	var item entity.InventoryItem
	if shrinkage != nil {
		if item, err = ws.SetShrinkage(productID, *shrinkage); err != nil {
			return writeError(c, err)
		}
	}
	// Con merma 0 las notas ya quedan vacías
	if in.ShrinkageNotes != nil && effective.IsPositive() {
		if item, err = ws.SetShrinkageNotes(productID, notes); err != nil {
			return writeError(c, err)
		}
	}
	if physical != nil {
		if item, err = ws.SetPhysicalCount(productID, *physical); err != nil {
			return writeError(c, err)
		}
	}
	if in.ShrinkageNotes != nil && shrinkage == nil && physical == nil && !effective.IsPositive() {
		// Solo se pidió limpiar notas de un producto sin merma
		if item, err = ws.SetShrinkage(productID, decimal.Zero); err != nil {
			return writeError(c, err)
		}
	}
	return c.JSON(dto.FromItem(item))
}

func parseQuantity(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, ok := domaininv.ParseCount(*s)
	if !ok {
		return nil, domain.ErrInvalidQuantity
	}
	return &d, nil
}

// Reload godoc
// @Summary      Recargar catálogo
// @Description  Desbloquea un espacio cuya carga de catálogo falló.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del espacio"
// @Success      200  {object}  dto.WorkspaceResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces/{id}/reload [post]
func (h *WorkspaceHandler) Reload(c *fiber.Ctx) error {
	ws, err := h.uc.Reload(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return snapshot(c, fiber.StatusOK, ws)
}

// Save godoc
// @Summary      Guardar conteo
// @Description  Persiste los productos seleccionados como conteo pending. El stock se aplica al confirmarse la impresión del reporte.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del espacio"
// @Param        body  body  dto.SaveWorkspaceRequest  false "Periodo informativo"
// @Success      201   {object}  dto.CountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces/{id}/save [post]
func (h *WorkspaceHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveWorkspaceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	count, err := h.uc.Save(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), inventory.SaveInput{DateRange: in.DateRange})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromCount(count))
}

// Discard godoc
// @Summary      Descartar espacio de conteo
// @Tags         inventory
// @Security     Bearer
// @Param        id   path  string  true  "ID del espacio"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/workspaces/{id} [delete]
func (h *WorkspaceHandler) Discard(c *fiber.Ctx) error {
	if err := h.uc.Discard(GetCompanyID(c), GetUserID(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
