// Package validation holds the request rules shared by the HTTP binding layer
// and the services. Both use the "binding" struct tag.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/crte-ams/ticket-service/internal/errs"
	"github.com/crte-ams/ticket-service/internal/model"
)

const cpfLength = 11

// Digits drops everything but ASCII digits ("123.456.789-09" -> "12345678909").
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func validCPF(fl validator.FieldLevel) bool {
	return len(Digits(fl.Field().String())) == cpfLength
}

func validSetor(fl validator.FieldLevel) bool {
	return model.ValidSector(fl.Field().String())
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// Register installs the custom tags and JSON field naming on v.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("cpf", validCPF); err != nil {
		return err
	}
	return v.RegisterValidation("setor", validSetor)
}

// New returns a validator that reads the same "binding" tags gin does.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	if err := Register(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterGin installs the custom tags on gin's default validator engine.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validation: gin validator engine is not go-playground/validator")
	}
	return Register(v)
}

// ToError converts validator output into an *errs.ValidationError for the first failing field.
func ToError(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return errs.Invalid(fe.Field(), message(fe))
	}
	return errs.Invalid("", "requisição inválida: "+err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "campo obrigatório"
	case "oneof":
		return "deve ser um de: " + fe.Param()
	case "cpf":
		return "CPF deve ter 11 dígitos"
	case "setor":
		return "setor desconhecido"
	case "ip", "ipv4", "ipv6":
		return "deve ser um endereço IP válido"
	case "max":
		return "deve ter no máximo " + fe.Param() + " caracteres"
	}
	return "valor inválido"
}
