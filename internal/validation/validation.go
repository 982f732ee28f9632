// Package validation checks request payloads with go-playground/validator
// and turns failures into per-field error maps.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/VtlBz/foodgram-project/internal/types"
	"github.com/go-playground/validator/v10"
)

var (
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// ReservedUsername is the path segment of the current user endpoint.
const ReservedUsername = "me"

var validate = New()

// New returns a validator that reports JSON field names and knows the
// username, notme, slug and hexcolor rules.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "notme", func(fl validator.FieldLevel) bool {
		return !strings.EqualFold(fl.Field().String(), ReservedUsername)
	})
	mustRegister(v, "slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "hexcolor", func(fl validator.FieldLevel) bool {
		return hexColorPattern.MatchString(fl.Field().String())
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// Struct validates s. A failure is returned as a validation *types.AppError.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return types.Validation(FieldErrors(verrs))
	}
	return err
}

// FieldErrors converts validator errors into messages keyed by the field
// path without the root struct name, e.g. "ingredients[0].amount".
func FieldErrors(verrs validator.ValidationErrors) types.FieldErrors {
	fields := types.FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fieldPath(fe), Message(fe))
	}
	return fields
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// Message renders the user facing text for one failed rule.
func Message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Обязательное поле."
	case "email":
		return "Введите правильный адрес электронной почты."
	case "username":
		return "Введите правильное имя пользователя. Оно может содержать только буквы, цифры и знаки @/./+/-/_."
	case "notme":
		return fmt.Sprintf("Имя пользователя '%s' недоступно.", ReservedUsername)
	case "slug":
		return "Значение должно состоять только из латинских букв, цифр, знаков подчеркивания или дефиса."
	case "hexcolor":
		return "Введите цвет в формате HEX, например #49B64E."
	case "max":
		if isString {
			return fmt.Sprintf("Убедитесь, что это значение содержит не более %s символов.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Убедитесь, что здесь не более %s элементов.", fe.Param())
		}
		return fmt.Sprintf("Убедитесь, что это значение меньше либо равно %s.", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("Убедитесь, что это значение содержит не менее %s символов.", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Убедитесь, что здесь не менее %s элементов.", fe.Param())
		}
		return fmt.Sprintf("Убедитесь, что это значение больше либо равно %s.", fe.Param())
	case "gt":
		return fmt.Sprintf("Убедитесь, что это значение больше %s.", fe.Param())
	}
	return fmt.Sprintf("Недопустимое значение (%s).", fe.Tag())
}
