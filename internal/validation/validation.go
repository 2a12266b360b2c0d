// Package validation concentra o erro de validação por campo e o validator
// de struct tags usado nos DTOs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Werneck0live/cadastro-leads/internal/utils"
)

// Error carrega o detalhe por campo (campo -> motivo).
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field cria um erro de um único campo.
func Field(name, reason string) *Error {
	return &Error{Fields: map[string]string{name: reason}}
}

// Collector acumula problemas e devolve nil quando não há nenhum.
type Collector struct {
	fields map[string]string
}

func (c *Collector) Add(name, reason string) {
	if c.fields == nil {
		c.fields = map[string]string{}
	}
	if _, ok := c.fields[name]; !ok {
		c.fields[name] = reason
	}
}

func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &Error{Fields: c.fields}
}

func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

var rateRe = regexp.MustCompile(`^\d+\.\d{2}$`)

// ValidRate: decimal com exatamente duas casas ("0.51", "12.00").
func ValidRate(s string) bool {
	return rateRe.MatchString(s)
}

var (
	once sync.Once
	v    *validator.Validate
)

// Validator devolve a instância compartilhada com as tags "cnpj" e "rate" registradas.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
			return utils.ValidateCNPJ(utils.SanitizeCNPJ(fl.Field().String()))
		})
		_ = v.RegisterValidation("rate", func(fl validator.FieldLevel) bool {
			return ValidRate(fl.Field().String())
		})
	})
	return v
}

// Struct valida o DTO e traduz validator.ValidationErrors para *Error.
func Struct(dto any) error {
	err := Validator().Struct(dto)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var c Collector
	for _, fe := range verrs {
		c.Add(fe.Field(), reason(fe))
	}
	return c.Err()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "cnpj":
		return "invalid cnpj"
	case "rate":
		return "must be a decimal with two fraction digits"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "invalid email"
	case "min":
		return "must have at least " + fe.Param() + " characters"
	case "max":
		return "must have at most " + fe.Param() + " characters"
	}
	return "failed " + fe.Tag()
}
