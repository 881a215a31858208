package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
)

// HeaderInventoryAck indica si la impresión emitió la confirmación inventory_printed.
const HeaderInventoryAck = "X-Inventory-Ack"

// CountHandler maneja conteos guardados: consulta, reporte, confirmación y cierre manual.
type CountHandler struct {
	lifecycle *inventory.LifecycleManager
	reports   *inventory.ReportUseCase
}

// NewCountHandler construye el handler.
func NewCountHandler(lifecycle *inventory.LifecycleManager, reports *inventory.ReportUseCase) *CountHandler {
	return &CountHandler{lifecycle: lifecycle, reports: reports}
}

type listCountsQuery struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

// List godoc
// @Summary      Listar conteos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "pending | completed"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.CountListResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/inventory/counts [get]
func (h *CountHandler) List(c *fiber.Ctx) error {
	var q listCountsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	list, err := h.lifecycle.List(c.Context(), GetCompanyID(c), repository.CountFilter{
		Status: q.Status,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.CountListResponse{
		Items: make([]dto.CountResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, cnt := range list {
		r := dto.FromCount(cnt)
		r.Items = nil
		out.Items = append(out.Items, r)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener conteo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/counts/{id} [get]
func (h *CountHandler) Get(c *fiber.Ctx) error {
	count, err := h.lifecycle.Get(c.Context(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromCount(count))
}

// Report godoc
// @Summary      Imprimir reporte del conteo (PDF)
// @Description  Si el conteo está pendiente, la impresión emite inventory_printed y el conteo se cierra aplicando el stock.
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/counts/{id}/report [get]
func (h *CountHandler) Report(c *fiber.Ctx) error {
	out, err := h.reports.Render(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	ack := "skipped"
	if out.AckPublished {
		ack = "published"
	}
	c.Set(HeaderInventoryAck, ack)
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, out.Filename))
	return c.Send(out.Content)
}

// Acknowledge godoc
// @Summary      Confirmar impresión
// @Description  Para renderizadores externos: emite inventory_printed y el cierre se aplica de forma asíncrona.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      202  {object}  dto.AckResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/counts/{id}/ack [post]
func (h *CountHandler) Acknowledge(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.reports.Acknowledge(c.Context(), GetCompanyID(c), GetUserID(c), id); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.AckResponse{CountID: id, Published: true})
}

// ForceClose godoc
// @Summary      Cerrar conteo manualmente
// @Description  Solo admin. Para conteos cuya confirmación de impresión no llegó; exige motivo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del conteo"
// @Param        body  body  dto.ForceCloseRequest  true  "Motivo"
// @Success      200   {object}  dto.CountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/counts/{id}/force-close [post]
func (h *CountHandler) ForceClose(c *fiber.Ctx) error {
	var in dto.ForceCloseRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	count, err := h.lifecycle.ForceClose(c.Context(), GetCompanyID(c), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromCount(count))
}
