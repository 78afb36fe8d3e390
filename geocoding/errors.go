// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GeocodingError representa erros específicos de geocodificação.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType define os tipos de erro de geocodificação.
type ErrorType int

const (
	// ErrorTypeUnknown erro desconhecido.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit limite de requisições atingido.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded cota excedida.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout tempo de conexão esgotado.
	ErrorTypeTimeout
	// ErrorTypeNotFound endereço não encontrado.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest requisição ou candidato inválido.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError erro de rede.
	ErrorTypeNetworkError
	// ErrorTypeMalformed resposta ilegível.
	ErrorTypeMalformed
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:        "unknown",
	ErrorTypeRateLimit:      "rate_limit",
	ErrorTypeQuotaExceeded:  "quota_exceeded",
	ErrorTypeTimeout:        "timeout",
	ErrorTypeNotFound:       "not_found",
	ErrorTypeInvalidRequest: "invalid_request",
	ErrorTypeNetworkError:   "network",
	ErrorTypeMalformed:      "malformed",
}

func (t ErrorType) String() string {
	if s, ok := errorTypeNames[t]; ok {
		return s
	}

	return fmt.Sprintf("ErrorType(%d)", int(t))
}

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

func errorType(err error) (ErrorType, bool) {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type, true
	}

	return ErrorTypeUnknown, false
}

// IsRateLimitError verifica se o erro é por limite de requisições.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	if t, ok := errorType(err); ok {
		return t == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError verifica se o erro é por cota excedida.
func IsQuotaExceededError(err error) bool {
	if err == nil {
		return false
	}

	if t, ok := errorType(err); ok {
		return t == ErrorTypeQuotaExceeded
	}

	// mensagens do Google Maps
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError verifica se o erro é por tempo esgotado.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}

	if t, ok := errorType(err); ok && t == ErrorTypeTimeout {
		return true
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// IsNotFoundError verifica se o provedor não encontrou o endereço.
func IsNotFoundError(err error) bool {
	t, ok := errorType(err)

	return ok && t == ErrorTypeNotFound
}

// ClassifyHTTPError classifica um status HTTP em um tipo de erro de geocodificação.
func ClassifyHTTPError(statusCode int, provider string) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: provider + ": rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: provider + ": quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: provider + ": invalid request",
		}
	case http.StatusNotFound: // 404
		return &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: provider + ": location not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("%s: service unavailable (status %d)", provider, statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("%s: HTTP error %d", provider, statusCode),
		}
	}
}

// classifyTransportError wraps a failed round trip.
func classifyTransportError(err error, provider string) *GeocodingError {
	t := ErrorTypeNetworkError
	if IsTimeoutError(err) {
		t = ErrorTypeTimeout
	}

	return &GeocodingError{Type: t, Message: provider + ": request failed", Err: err}
}
