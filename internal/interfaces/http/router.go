package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/inventory"
	"github.com/jhoicas/conteo-inventario/internal/domain/repository"
	"github.com/jhoicas/conteo-inventario/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Workspaces *inventory.WorkspaceUseCase
	Lifecycle  *inventory.LifecycleManager
	Reports    *inventory.ReportUseCase
	Warehouses repository.WarehouseRepository
	JWTSecret  string
	JWTIssuer  string
}

// Router registra las rutas de la API.
func Router(app fiber.Router, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	inv := api.Group("/inventory")

	// Lectura: cualquier rol autenticado
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor)
	// Contar y cerrar: personal de bodega
	counters := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)

	warehouseHandler := NewWarehouseHandler(deps.Warehouses)
	inv.Get("/warehouses", readers, warehouseHandler.List)

	ws := inv.Group("/workspaces", counters)
	wsHandler := NewWorkspaceHandler(deps.Workspaces)
	ws.Post("/", wsHandler.Open)
	ws.Get("/:id", wsHandler.Get)
	ws.Delete("/:id", wsHandler.Discard)
	ws.Put("/:id/scope", wsHandler.SetScope)
	ws.Put("/:id/filter", wsHandler.SetFilter)
	ws.Post("/:id/selection", wsHandler.Select)
	ws.Delete("/:id/selection", wsHandler.ClearSelection)
	ws.Delete("/:id/selection/:product_id", wsHandler.Deselect)
	ws.Put("/:id/items/:product_id", wsHandler.UpdateItem)
	ws.Post("/:id/reload", wsHandler.Reload)
	ws.Post("/:id/save", wsHandler.Save)

	counts := inv.Group("/counts")
	countHandler := NewCountHandler(deps.Lifecycle, deps.Reports)
	counts.Get("/", readers, countHandler.List)
	counts.Get("/:id", readers, countHandler.Get)
	counts.Get("/:id/report", counters, countHandler.Report)
	counts.Post("/:id/ack", counters, countHandler.Acknowledge)
	counts.Post("/:id/force-close", RequireRole(jwt.RoleAdmin), countHandler.ForceClose)
}
