package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"weatherview/internal/types"
)

func TestJSON_WritesEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusAccepted, APIResponse{Data: map[string]string{"status": "loading"}})

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected status 202, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"status":"loading"}}` {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestJSON_MarshalFailure(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(types.WithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	JSON(rec, req, http.StatusOK, map[string]any{"bad": make(chan int)})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var resp APIErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Error.Code != string(types.ErrCodeInternalUnexpected) || resp.Error.RequestID != "req-1" {
		t.Errorf("unexpected fallback error: %+v", resp.Error)
	}
}

func TestError_MapsAppErrorCodes(t *testing.T) {
	tests := []struct {
		code   types.ErrorCode
		status int
	}{
		{types.ErrCodeValidationBlankCity, http.StatusBadRequest},
		{types.ErrCodeValidationInvalidDate, http.StatusBadRequest},
		{types.ErrCodeNotFoundRoute, http.StatusNotFound},
		{types.ErrCodeTimeout, http.StatusGatewayTimeout},
		{types.ErrCodeUpstreamHTTPError, http.StatusBadGateway},
		{types.ErrCodeInternalUnexpected, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(types.WithRequestID(req.Context(), "req-9"))
			rec := httptest.NewRecorder()

			appErr := types.NewAppErrorWithDetails(tt.code, "something happened", errors.New("internal cause"),
				map[string]any{"field": "city"})
			Error(rec, req, fmt.Errorf("wrapped: %w", appErr))

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			var resp APIErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if resp.Error.Code != string(tt.code) {
				t.Errorf("expected code %s, got %s", tt.code, resp.Error.Code)
			}
			if resp.Error.Message != "something happened" {
				t.Errorf("unexpected message %q", resp.Error.Message)
			}
			if resp.Error.RequestID != "req-9" {
				t.Errorf("expected request_id req-9, got %q", resp.Error.RequestID)
			}
			if resp.Error.Details["field"] != "city" {
				t.Errorf("expected details to be rendered, got %v", resp.Error.Details)
			}
		})
	}
}

func TestError_GenericErrorDoesNotLeak(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	Error(rec, req, errors.New("dial tcp 10.0.0.1: secret"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Errorf("internal error leaked: %s", rec.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		City string `json:"city"`
		Wait bool   `json:"wait"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"city":"Lima","wait":true}`, ""},
		{"empty", ``, "request body must not be empty"},
		{"syntax", `{"city":`, "invalid JSON in request body"},
		{"malformed", `{"city" "Lima"}`, "malformed JSON in request body"},
		{"unknown field", `{"town":"Lima"}`, `unknown field in request body: "town"`},
		{"type mismatch", `{"city":42}`, "invalid value for field"},
		{"trailing value", `{"city":"Lima"}{"city":"Quito"}`, "request body must contain a single JSON object"},
		{"too large", `{"city":"` + strings.Repeat("a", maxRequestBodySize) + `"}`, "request body must not exceed 1MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			var dst payload
			err := DecodeJSON(rec, req, &dst)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if dst.City != "Lima" || !dst.Wait {
					t.Errorf("unexpected decode result: %+v", dst)
				}
				return
			}

			var appErr *types.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected *types.AppError, got %T: %v", err, err)
			}
			if appErr.Code != errCodeValidationInvalidJSON {
				t.Errorf("expected code %s, got %s", errCodeValidationInvalidJSON, appErr.Code)
			}
			if appErr.Message != tt.wantErr {
				t.Errorf("expected message %q, got %q", tt.wantErr, appErr.Message)
			}
			if appErr.HTTPStatus() != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", appErr.HTTPStatus())
			}
		})
	}
}
