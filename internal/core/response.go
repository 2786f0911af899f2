package core

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"weatherview/internal/types"
)

// maxRequestBodySize caps lookup request bodies at 1 MB.
const maxRequestBodySize = 1 << 20

// errCodeValidationInvalidJSON is returned by DecodeJSON for any body that
// cannot be decoded into the target struct.
const errCodeValidationInvalidJSON types.ErrorCode = "validation_invalid_json"

// APIResponse wraps every successful payload as {"data": ...}.
type APIResponse struct {
	Data interface{}   `json:"data,omitempty"`
	Meta *ResponseMeta `json:"meta,omitempty"`
}

// ResponseMeta carries non-blocking information alongside a response body.
type ResponseMeta struct {
	Warnings []string `json:"warnings,omitempty"`
}

// APIErrorResponse wraps every failure as {"error": {...}}.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is the client-visible part of an AppError.
type ErrorDetail struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id"`
}

// JSON marshals data and writes it with status. A marshal failure is reported
// as a 500 envelope instead.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	body, err := json.Marshal(data)
	if err != nil {
		types.LoggerFromContext(r.Context(), slog.Default()).
			ErrorContext(r.Context(), "response marshal failed", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(APIErrorResponse{Error: ErrorDetail{
			Code:      string(types.ErrCodeInternalUnexpected),
			Message:   "failed to marshal response",
			RequestID: types.GetRequestID(r.Context()),
		}})
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error renders err as an APIErrorResponse. An AppError keeps its code,
// message and details; anything else becomes an opaque 500 so wrapped causes
// never reach the client. Server-side failures are logged with their cause.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	detail := ErrorDetail{
		Code:      string(types.ErrCodeInternalUnexpected),
		Message:   "an unexpected error occurred",
		RequestID: types.GetRequestID(r.Context()),
	}
	status := http.StatusInternalServerError

	var appErr *types.AppError
	if errors.As(err, &appErr) {
		detail.Code = string(appErr.Code)
		detail.Message = appErr.Message
		detail.Details = appErr.Details
		status = appErr.HTTPStatus()
	}

	if status >= http.StatusInternalServerError {
		types.LoggerFromContext(r.Context(), slog.Default()).
			ErrorContext(r.Context(), "request failed", "code", detail.Code, "status", status, "error", err)
	}

	JSON(w, r, status, APIErrorResponse{Error: detail})
}

// DecodeJSON strictly decodes a single JSON object from the request body into
// dst. Unknown fields, trailing values, empty bodies and bodies over 1 MB are
// rejected with a 400 validation_invalid_json AppError.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}
	if dec.More() {
		return invalidJSON("request body must contain a single JSON object", nil)
	}
	return nil
}

func invalidJSON(msg string, err error) *types.AppError {
	return types.NewAppError(errCodeValidationInvalidJSON, msg, err)
}

// mapDecodeError picks the client message for a json.Decoder failure.
func mapDecodeError(err error) *types.AppError {
	var (
		maxBytesErr *http.MaxBytesError
		syntaxErr   *json.SyntaxError
		typeErr     *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		return invalidJSON("request body must not exceed 1MB", err)
	case errors.As(err, &syntaxErr):
		return invalidJSON("malformed JSON in request body", err)
	case errors.As(err, &typeErr):
		return invalidJSON("invalid value for field", err).WithDetails(map[string]any{
			"field":    typeErr.Field,
			"expected": typeErr.Type.String(),
		})
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return invalidJSON("unknown field in request body: "+strings.TrimPrefix(err.Error(), "json: unknown field "), err)
	case errors.Is(err, io.EOF):
		return invalidJSON("request body must not be empty", err)
	default:
		return invalidJSON("invalid JSON in request body", err)
	}
}
