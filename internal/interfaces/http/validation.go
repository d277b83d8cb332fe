package http

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Los errores se reportan con el nombre JSON del campo.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// bind parsea el body JSON en out y valida sus tags. aliases renombra campos JSON
// al nombre con que se reportan (p.ej. supplier_id -> supplier).
func bind(c *fiber.Ctx, out any, aliases map[string]string) error {
	if err := c.BodyParser(out); err != nil {
		return bodyError(err, aliases)
	}
	return validateStruct(out, aliases)
}

func validateStruct(out any, aliases map[string]string) error {
	err := validate.Struct(out)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := domain.NewValidationError(domain.KindValidation)
	for _, fe := range fieldErrs {
		verr.Add(alias(fe.Field(), aliases), validationMessage(fe))
	}
	return verr
}

func bodyError(err error, aliases map[string]string) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		parts := strings.Split(typeErr.Field, ".")
		field := alias(parts[len(parts)-1], aliases)
		return domain.Invalid(field, "tipo inválido, se esperaba "+typeErr.Type.String())
	}
	return domain.Invalid("body", "cuerpo JSON inválido")
}

func alias(field string, aliases map[string]string) string {
	if a, ok := aliases[field]; ok {
		return a
	}
	return field
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "numeric":
		return "solo se permiten dígitos"
	case "min":
		if e.Kind() == reflect.String {
			return "mínimo " + e.Param() + " caracteres"
		}
		return "debe ser mayor o igual a " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "máximo " + e.Param() + " caracteres"
		}
		return "debe ser menor o igual a " + e.Param()
	default:
		return "valor inválido"
	}
}

// pageFrom lee limit/offset del query string y aplica los valores por defecto.
func pageFrom(c *fiber.Ctx) (dto.PageRequest, error) {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	if err := validateStruct(&page, nil); err != nil {
		return page, err
	}
	page.DefaultPage()
	return page, nil
}
