package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lumberyard-api/internal/application/dto"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre JSON del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// parseBody decodifica el JSON y valida las etiquetas `validate`. Devuelve la respuesta
// 400 ya escrita en ok=false. Un cuerpo vacío se valida como valor cero.
func parseBody(c *fiber.Ctx, out any) (bool, error) {
	if len(c.Body()) == 0 {
		if err := validate.Struct(out); err != nil {
			return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: describe(err)})
		}
		return true, nil
	}
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: describe(err)})
	}
	return true, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "datos inválidos"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" es requerido")
		case "nefield":
			msgs = append(msgs, field+" debe ser distinta de la bodega de origen")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s debe ser uno de: %s", field, fe.Param()))
		case "gt", "gte", "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s no cumple %s=%s", field, fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, field+" inválido")
		}
	}
	return strings.Join(msgs, "; ")
}

// parseDate acepta RFC3339 o YYYY-MM-DD. Una fecha sin hora es un día en loc (nil = UTC);
// endOfDay la lleva al último instante de ese día.
func parseDate(s string, endOfDay bool, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
