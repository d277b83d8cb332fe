package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/access"
	"github.com/jhoicas/Suministros-api/pkg/jwt"
)

// LocalPrincipal key del principal del request en c.Locals.
const LocalPrincipal = "principal"

// PrincipalResolver construye el principal a partir del user id del token.
// Lo implementa usecase.UserUseCase.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, userID string) (access.Principal, error)
}

// AuthMiddleware valida el Bearer Token JWT, carga el usuario y deja el access.Principal en c.Locals.
// La empresa y el rol se leen de la base en cada request, no del token.
func AuthMiddleware(jwtSecret string, resolver PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		p, err := resolver.ResolvePrincipal(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, domain.ErrAuthenticationRequired) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "usuario inexistente o inactivo"})
			}
			return writeError(c, err)
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// GetPrincipal devuelve el principal del contexto; Anonymous si no pasó por AuthMiddleware.
func GetPrincipal(c *fiber.Ctx) access.Principal {
	p, ok := c.Locals(LocalPrincipal).(access.Principal)
	if !ok {
		return access.Anonymous
	}
	return p
}
