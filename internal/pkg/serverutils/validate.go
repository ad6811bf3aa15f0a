// FILE: internal/pkg/serverutils/validate.go
package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks a bound request body against its `validate`
// tags and turns failures into a 400 with the offending fields named.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			invalid = append(invalid, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
	}
	if len(invalid) == 0 {
		return NewAppError(fiber.StatusBadRequest, "Invalid request body")
	}
	return NewAppError(fiber.StatusBadRequest, "Invalid fields: "+strings.Join(invalid, ", "))
}
