package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yungbote/staffassist-backend/internal/suggest/httpapi/httputil"
)

var registerTagNameOnce sync.Once

// useJSONFieldNames makes validation errors report wire names ("title")
// instead of Go field names ("Title").
func useJSONFieldNames() {
	registerTagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// writeBindError maps a ShouldBindJSON failure onto the error envelope.
func writeBindError(c *gin.Context, err error) {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooBig):
		httputil.WriteError(c, http.StatusRequestEntityTooLarge, "request body too large", httputil.CodeRequestTooLarge, "")
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		httputil.WriteError(c, http.StatusBadRequest, validationMessage(fe), httputil.CodeInvalidRequest, fe.Field())
	case errors.As(err, &typeErr):
		httputil.WriteError(c, http.StatusBadRequest, fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type), httputil.CodeInvalidRequest, typeErr.Field)
	case errors.Is(err, io.EOF):
		httputil.WriteError(c, http.StatusBadRequest, "request body is required", httputil.CodeInvalidRequest, "")
	default:
		httputil.WriteError(c, http.StatusBadRequest, err.Error(), httputil.CodeInvalidRequest, "")
	}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
