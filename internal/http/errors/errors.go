// Package errors define AppError y cómo se serializa en las respuestas HTTP.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
)

// As es errors.As (este paquete sombrea el nombre "errors").
func As(err error, target any) bool { return stderrors.As(err, target) }

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Detail  string            `json:"detail,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteError escribe la respuesta JSON para err. Errores no tipados salen
// como 500 y la causa se loguea, nunca se expone.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= 500 && appErr.Err != nil {
		logger.L().Error("request failed",
			logger.String("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
		Fields:  appErr.Fields,
	})
}
