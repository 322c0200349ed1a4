package engine

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"codecoach/internal/errors"
	"codecoach/internal/features"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one rejected field of a request.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validate.RegisterValidation("language", func(fl validator.FieldLevel) bool {
			_, ok := features.ParseLanguage(fl.Field().String())
			return ok
		})
	})
	return validate
}

// Validate checks the request contract. Violations are returned as an
// INVALID_REQUEST error whose details list every rejected field.
func (r Request) Validate() error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.New(errors.InvalidRequest, "request could not be validated", err)
	}

	fields := make([]FieldError, 0, len(verrs))
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		f := FieldError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Request."),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		}
		fields = append(fields, f)
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return errors.New(errors.InvalidRequest, strings.Join(msgs, "; "), nil).WithDetails(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "language":
		return fmt.Sprintf("unsupported language %q", fe.Value())
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed " + fe.Tag()
	}
}
