package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/usecase"
)

// StorageHandler maneja el storage de la empresa.
type StorageHandler struct {
	uc *usecase.StorageUseCase
}

// NewStorageHandler construye el handler.
func NewStorageHandler(uc *usecase.StorageUseCase) *StorageHandler {
	return &StorageHandler{uc: uc}
}

// Create godoc
// @Summary      Crear storage
// @Tags         storage
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStorageRequest  true  "Dirección"
// @Success      201   {object}  dto.StorageResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/storage [post]
func (h *StorageHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateStorageRequest
	if err := bind(c, &in, nil); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), GetPrincipal(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener storage
// @Tags         storage
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del storage"
// @Success      200  {object}  dto.StorageResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/storage/{id} [get]
func (h *StorageHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), GetPrincipal(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar storage
// @Tags         storage
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del storage"
// @Param        body  body  dto.UpdateStorageRequest  true  "Dirección"
// @Success      200   {object}  dto.StorageResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/storage/{id} [put]
func (h *StorageHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateStorageRequest
	if err := bind(c, &in, nil); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar storage
// @Description  Elimina también sus productos.
// @Tags         storage
// @Security     Bearer
// @Param        id   path  string  true  "ID del storage"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/storage/{id} [delete]
func (h *StorageHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetPrincipal(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
