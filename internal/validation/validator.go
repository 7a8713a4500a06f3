// Package validation validates request payloads with go-playground/validator
// and converts failures into domain validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

// sourceURLPattern accepts http(s) URLs with at least one dot after the scheme.
var sourceURLPattern = regexp.MustCompile(`^https?://.+\..+`)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator with the bookshelf custom tags registered:
// source_url, item_type and tag_kind.
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("source_url", func(fl validator.FieldLevel) bool {
		return sourceURLPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("item_type", func(fl validator.FieldLevel) bool {
		return domain.ItemType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("tag_kind", func(fl validator.FieldLevel) bool {
		return domain.TagKind(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain validation error listing
// every failing field.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidSourceURL reports whether raw is an acceptable item source URL.
func ValidSourceURL(raw string) bool {
	return sourceURLPattern.MatchString(raw)
}

func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	parts := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		field := fieldPath(e)
		msg := friendlyMessage(e)
		fieldErrors[field] = msg
		parts = append(parts, field+" "+msg)
	}
	sort.Strings(parts)

	return domainerrors.ValidationWithDetails("Invalid request: "+strings.Join(parts, "; "), fieldErrors)
}

// fieldPath returns the JSON path of the failing field without the root
// struct name, e.g. "tags[0].name".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return e.Field()
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_without":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must not contain more than %s entries", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "source_url":
		return "must be an http(s) URL"
	case "item_type":
		return "must be one of: article book essay poem other"
	case "tag_kind":
		return "must be one of: tag author"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
