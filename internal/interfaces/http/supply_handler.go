package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/supply"
)

// Los errores de tipo en el body se reportan con los mismos nombres que la validación del caso de uso.
var supplyFieldAliases = map[string]string{
	"supplier_id":   supply.FieldSupplier,
	"product_id":    supply.FieldProducts,
	"line_items":    supply.FieldProducts,
	"delivery_date": supply.FieldDeliveryDate,
	"quantity":      supply.FieldQuantity,
}

// SupplyHandler maneja las peticiones HTTP para Supply.
type SupplyHandler struct {
	uc *supply.SupplyUseCase
}

// NewSupplyHandler construye el handler.
func NewSupplyHandler(uc *supply.SupplyUseCase) *SupplyHandler {
	return &SupplyHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar supply
// @Description  Persiste la entrega y suma cada línea al stock del producto en una sola transacción.
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SupplyRequest  true  "supplier_id, delivery_date (YYYY-MM-DD), line_items"
// @Success      201   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/supplies [post]
func (h *SupplyHandler) Create(c *fiber.Ctx) error {
	var in dto.SupplyRequest
	if err := bind(c, &in, supplyFieldAliases); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar supplies
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.SupplyListResponse
// @Router       /api/supplies [get]
func (h *SupplyHandler) List(c *fiber.Ctx) error {
	page, err := pageFrom(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), GetPrincipal(c), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener supply
// @Tags         supplies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la supply"
// @Success      200  {object}  dto.SupplyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id} [get]
func (h *SupplyHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Reemplazar supply
// @Description  Revierte las líneas anteriores y aplica las nuevas.
// @Tags         supplies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la supply"
// @Param        body  body  dto.SupplyRequest  true  "supplier_id, delivery_date, line_items"
// @Success      200   {object}  dto.SupplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/supplies/{id} [put]
func (h *SupplyHandler) Update(c *fiber.Ctx) error {
	var in dto.SupplyRequest
	if err := bind(c, &in, supplyFieldAliases); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar supply
// @Description  Revierte el stock antes de eliminar.
// @Tags         supplies
// @Security     Bearer
// @Param        id   path  string  true  "ID de la supply"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/supplies/{id} [delete]
func (h *SupplyHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
