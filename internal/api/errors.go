package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rxtech-lab/findash/pkg/errors"
	"go.uber.org/zap"
)

// statusFor maps an error code to the HTTP status returned to the client.
func statusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}

	code := errors.GetCode(err)
	if code == errors.ErrCodeInsufficientData || code == errors.ErrCodeEmptySeries {
		return http.StatusUnprocessableEntity
	}

	switch code.Category() {
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryData:
		if code == errors.ErrCodeDataNotFound || code == errors.ErrCodeNoDataFound {
			return http.StatusNotFound
		}

		return http.StatusInternalServerError
	case errors.CategoryMarketData:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		s.log.Error("Request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	code := errors.GetCode(err)
	writeJSON(w, status, ErrorResponse{Detail: err.Error(), Code: code, Category: code.Category()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
