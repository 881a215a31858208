package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/conteo-inventario/internal/application/dto"
	"github.com/jhoicas/conteo-inventario/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: los errores más específicos primero.
var errorMappings = []errorMapping{
	{domain.ErrEmptySelection, fiber.StatusBadRequest, "EMPTY_SELECTION"},
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrShrinkageNotesDisabled, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnknownWarehouse, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrCountNotFound, fiber.StatusNotFound, "COUNT_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrCountAlreadyClosed, fiber.StatusConflict, "COUNT_ALREADY_CLOSED"},
	{domain.ErrAlreadyAwaiting, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrCatalogUnavailable, fiber.StatusServiceUnavailable, "CATALOG_UNAVAILABLE"},
	{domain.ErrAckTimeout, fiber.StatusGatewayTimeout, "ACK_TIMEOUT"},
}

// writeError traduce un error de dominio a dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
