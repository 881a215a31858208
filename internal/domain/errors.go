package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Validación del conteo (se rechazan antes de cualquier I/O).
	ErrEmptySelection         = errors.New("no hay productos seleccionados para el conteo")
	ErrInvalidQuantity        = errors.New("cantidad inválida: debe ser un número no negativo")
	ErrShrinkageNotesDisabled = errors.New("las notas de merma requieren una merma mayor a cero")
	ErrUnknownWarehouse       = errors.New("bodega desconocida para el alcance del conteo")

	// Protocolo de cierre: no se reintentan automáticamente.
	ErrCountNotFound      = errors.New("conteo de inventario no encontrado")
	ErrCountAlreadyClosed = errors.New("el conteo de inventario ya fue cerrado")

	// Catálogo incompleto: bloquea el espacio de conteo hasta recargar.
	ErrCatalogUnavailable = errors.New("catálogo de productos no disponible")

	// Confirmación de impresión.
	ErrAckTimeout      = errors.New("tiempo de espera agotado para la confirmación de impresión")
	ErrAlreadyAwaiting = errors.New("el conteo ya está esperando confirmación de impresión")
)

// IsProtocolError indica si err corresponde a un cierre que no puede tener éxito al reintentar.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrCountNotFound) || errors.Is(err, ErrCountAlreadyClosed)
}
