package gotrue

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
)

// APIError es un error devuelto por el auth server.
// Error() retorna el mensaje del provider tal cual, sin prefijos.
type APIError struct {
	Status  int
	Code    string // error_code de GoTrue (ej: email_exists), puede venir vacío
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Is mapea el status/código a los sentinels de repository.
func (e *APIError) Is(target error) bool {
	switch target {
	case repository.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case repository.ErrNotFound:
		return e.Status == http.StatusNotFound
	case repository.ErrConflict:
		if e.Status == http.StatusConflict {
			return true
		}
		switch e.Code {
		case "email_exists", "user_already_exists", "phone_exists":
			return true
		}
	}
	return false
}

// errorBody cubre las variantes de error que emite GoTrue según versión.
type errorBody struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

// parseError arma un APIError a partir del body. Si el body no trae mensaje
// se usa el status text.
func parseError(status int, body []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := ""
	for _, s := range []string{eb.Msg, eb.Message, eb.ErrorDescription, eb.Error} {
		if s = strings.TrimSpace(s); s != "" {
			msg = s
			break
		}
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if msg == "" {
		msg = "unexpected status"
	}
	return &APIError{Status: status, Code: eb.ErrorCode, Message: msg}
}
