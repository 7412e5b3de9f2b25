package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/usersvc/internal/logging"
)

const (
	headerContentType   = "Content-Type"
	contentTypeJSONUTF8 = "application/json; charset=utf-8"
	contentTypeText     = "text/plain; charset=utf-8"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string `json:"message"`
}

// AppHandler is an http handler that returns an error instead of writing it.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts h to http.HandlerFunc. Returned errors are logged and
// written as {"message": ...}; anything that is not an *HTTPError is a 500.
func MakeHandler(logger logging.Logger, h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			httpErr = ErrInternalServer(err)
		}

		args := []any{"code", httpErr.Code, "msg", httpErr.Message, "method", r.Method, "path", r.URL.Path}
		if cause := errors.Unwrap(httpErr); cause != nil && cause.Error() != httpErr.Message {
			args = append(args, "cause", cause)
		}
		if httpErr.Code >= http.StatusInternalServerError {
			logger.Error(r.Context(), "server error response", args...)
		} else {
			logger.Warn(r.Context(), "client error response", args...)
		}

		respondWithError(w, httpErr.Code, httpErr.Message)
	}
}

// RespondWithJSON writes payload as JSON with status.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set(headerContentType, contentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
		return
	}

	w.Header().Set(headerContentType, contentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	RespondWithJSON(w, status, errorBody{Message: message})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrBadRequest(err)
	}
	return nil
}
