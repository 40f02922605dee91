// Package apierrors provides structured API error codes and responses.
// Codes are namespaced: "core:*" for transport-level failures and "kb:*"
// for the knowledge-base workflow.
package apierrors

import (
	"net/http"

	"github.com/goatkit/kbgen/internal/kberrors"
)

// Core error codes
const (
	CodeUnauthorized   = "core:unauthorized"
	CodeInvalidToken   = "core:invalid_token"
	CodeInvalidRequest = "core:invalid_request"
	CodeInvalidID      = "core:invalid_id"
	CodeRateLimited    = "core:rate_limited"
	CodeInternalError  = "core:internal_error"
)

// Knowledge-base workflow codes, one per failure kind.
const (
	CodeValidationFailed = "kb:validation_failed"
	CodeNotFound         = "kb:not_found"
	CodeConnectivity     = "kb:connectivity"
	CodeProtocol         = "kb:protocol"
	CodeLicense          = "kb:license"
	CodeAPI              = "kb:api"
	CodeConfiguration    = "kb:configuration"
)

var coreErrors = []ErrorCode{
	{Code: CodeUnauthorized, Message: "Authentication required", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeInvalidToken, Message: "Invalid or expired token", HTTPStatus: http.StatusUnauthorized},
	{Code: CodeInvalidRequest, Message: "Invalid request body", HTTPStatus: http.StatusBadRequest},
	{Code: CodeInvalidID, Message: "Invalid ID format", HTTPStatus: http.StatusBadRequest},
	{Code: CodeRateLimited, Message: "Too many generation requests", HTTPStatus: http.StatusTooManyRequests},
	{Code: CodeInternalError, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError},
}

var kbErrors = []ErrorCode{
	{Code: CodeValidationFailed, Message: "Request validation failed", HTTPStatus: http.StatusBadRequest, Kind: kberrors.KindValidation},
	{Code: CodeNotFound, Message: "Resource not found", HTTPStatus: http.StatusNotFound, Kind: kberrors.KindNotFound},
	{Code: CodeConnectivity, Message: "Could not reach generation server", HTTPStatus: http.StatusBadGateway, Kind: kberrors.KindConnectivity},
	{Code: CodeProtocol, Message: "Unexpected response from generation server", HTTPStatus: http.StatusBadGateway, Kind: kberrors.KindProtocol},
	{Code: CodeLicense, Message: "License validation failed", HTTPStatus: http.StatusPaymentRequired, Kind: kberrors.KindLicense},
	{Code: CodeAPI, Message: "Generation API error", HTTPStatus: http.StatusBadGateway, Kind: kberrors.KindAPI},
	{Code: CodeConfiguration, Message: "Addon is not configured", HTTPStatus: http.StatusServiceUnavailable, Kind: kberrors.KindConfiguration},
}

func init() {
	for _, e := range coreErrors {
		Registry.Register(e)
	}
	for _, e := range kbErrors {
		Registry.Register(e)
	}
}
