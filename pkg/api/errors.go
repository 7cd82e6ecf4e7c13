package api

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nikogura/job-tracker/pkg/store"
	"github.com/pkg/errors"
)

const (
	msgInvalidJobID     = "Invalid job ID"
	msgJobNotFound      = "Job not found"
	msgSessionNotFound  = "Session not found"
	msgNoFieldsToUpdate = "No fields to update"
	msgJobDeleted       = "Job deleted successfully"
	msgAnswerReceived   = "Answer received"
)

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

// bindError renders a request binding failure as a 400.
func bindError(c *gin.Context, err error) {
	_ = c.Error(err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		detail(c, http.StatusBadRequest, strings.Join(msgs, "; "))
		return
	}

	detail(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
}

func fieldMessage(fe validator.FieldError) (msg string) {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "http_url":
		msg = fmt.Sprintf("%s must be a valid http or https URL", field)
	case "oneof":
		msg = fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "datetime":
		msg = fmt.Sprintf("%s must be a date in %s format", field, "YYYY-MM-DD")
	case "min":
		msg = fmt.Sprintf("%s must not be empty", field)
	default:
		msg = fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
	return msg
}

//nolint:gochecknoglobals // validator engine is process wide
var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report wire field names.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// storeError renders a store failure; notFound is the message for ErrNotFound.
func storeError(c *gin.Context, err error, notFound string) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, store.ErrNotFound):
		detail(c, http.StatusNotFound, notFound)
	case errors.Is(err, store.ErrInvalidID):
		detail(c, http.StatusBadRequest, msgInvalidJobID)
	case errors.Is(err, store.ErrInvalidArgument):
		detail(c, http.StatusBadRequest, msgNoFieldsToUpdate)
	default:
		detail(c, http.StatusInternalServerError, "Database error: "+err.Error())
	}
}

// generationError renders an LLM failure as a 500 carrying the underlying message.
func generationError(c *gin.Context, err error) {
	_ = c.Error(err)
	detail(c, http.StatusInternalServerError, err.Error())
}
