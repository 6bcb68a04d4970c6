package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
)

var initOnce sync.Once

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers the domain tags career, signuprole and skill.
func Init() {
	initOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register installs tag name resolution, aliases and custom tags on v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=6,max=72") // bcrypt ignores input past 72 bytes
	_ = v.RegisterValidation("career", func(fl validator.FieldLevel) bool {
		return contains(entity.Careers, fl.Field().String())
	})
	_ = v.RegisterValidation("skill", func(fl validator.FieldLevel) bool {
		return contains(entity.SkillLevels, fl.Field().String())
	})
	// Only user and publisher accounts can be self-registered.
	_ = v.RegisterValidation("signuprole", func(fl validator.FieldLevel) bool {
		r := entity.Role(fl.Field().String())
		return r == entity.RoleUser || r == entity.RolePublisher
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		r := entity.Role(fl.Field().String())
		return r == entity.RoleUser || r == entity.RolePublisher || r == entity.RoleAdmin
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ToDetails converts validation/binding errors into a map[field]message.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) {
		return map[string]string{"payload": "invalid json"}
	}
	if errors.As(err, &ute) {
		field := ute.Field
		if field == "" {
			field = "payload"
		}
		return map[string]string{field: "must be a " + ute.Type.String()}
	}

	// Validation errors from validator.v10
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fieldName(fe)] = formatFieldError(fe)
		}
		return out
	}

	// Fallback
	return map[string]string{"payload": "invalid payload"}
}

// Message joins every field error into one sentence, ordered by field name.
func Message(err error) string {
	details := ToDetails(err)
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+details[f])
	}
	return strings.Join(parts, ", ")
}

// ToAppError wraps a binding error as a Validation error carrying the joined message.
func ToAppError(err error) error {
	if err == nil {
		return nil
	}
	return &apperror.Error{Kind: apperror.KindValidation, Message: Message(err), Err: err}
}

// fieldName keeps the element index for errors inside slices, e.g. careers[1].
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func formatFieldError(fe validator.FieldError) string {
	// ActualTag resolves aliases such as pwd to the rule that failed.
	tag := fe.ActualTag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	// ===== PRESENCE/REQUIRED VALIDATIONS =====
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + param + " is not present"

	// ===== STRING FORMAT VALIDATIONS =====
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL with HTTP or HTTPS"
	case "mongodb":
		return "must be a valid id"

	// ===== SIZE/LENGTH VALIDATIONS =====
	case "len":
		if param != "" {
			return fmt.Sprintf("must be exactly %s characters long", param)
		}
		return "invalid length"
	case "min":
		if param != "" {
			if isNumberKind(kind) {
				return "must be at least " + param
			}
			if kind == reflect.Slice {
				return "must contain at least " + param + " item(s)"
			}
			return "must be at least " + param + " characters long"
		}
		return "too small"
	case "max":
		if param != "" {
			if isNumberKind(kind) {
				return "must be at most " + param
			}
			return "can not be more than " + param + " characters"
		}
		return "too large"

	// ===== INCLUSION/EXCLUSION VALIDATIONS =====
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "career":
		return "must be one of: " + strings.Join(entity.Careers, ", ")
	case "skill":
		return "must be one of: " + strings.Join(entity.SkillLevels, ", ")
	case "signuprole":
		return "must be one of: user, publisher"
	case "role":
		return "must be one of: user, publisher, admin"

	// ===== NUMERIC TYPE VALIDATIONS =====
	case "number", "numeric":
		return "must be numeric"
	}

	if param != "" {
		return fmt.Sprintf("failed on %s=%s", tag, param)
	}
	return "failed on " + tag
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
