package apitest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func decodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}
	details := map[string]string{}
	parts := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		msg := validationMessage(fieldErr)
		details[fieldErr.Field()] = msg
		parts = append(parts, fieldErr.Field()+" "+msg)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, strings.Join(parts, "; ")).WithDetails(details)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	}
	return "is invalid"
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	payload := types.Envelope{Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, types.Envelope{Error: "failed to encode response"})
			return
		}
		payload.Data = raw
	}
	writeJSON(w, status, payload)
}

func writeError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if typed.Code() != pkgerrors.CodeInternal && typed.Message() != "" {
		msg = typed.Message()
	}

	if logg != nil {
		logg.Warn(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), "request.error")
	}
	writeJSON(w, meta.HTTPStatus, types.Envelope{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload types.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func envelopeError(msg string) types.Envelope {
	return types.Envelope{Success: false, Error: msg}
}
