package dto

import "net/http"

// Error code constants.
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Lending rule error codes
const (
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeNotAvailable     = "ERR_NOT_AVAILABLE"
	ErrCodeSelfBorrow       = "ERR_SELF_BORROW"
	ErrCodeDepositMismatch  = "ERR_DEPOSIT_MISMATCH"
	ErrCodeInvalidCondition = "ERR_INVALID_CONDITION"
	ErrCodeLoanNotActive    = "ERR_LOAN_NOT_ACTIVE"
)

// Ledger error codes
const (
	ErrCodeInsufficientFunds = "ERR_INSUFFICIENT_FUNDS"
	ErrCodeLedger            = "ERR_LEDGER"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeValidation:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// State conflicts: the request was well formed but the resource
	// cannot accept it right now
	ErrCodeInvalidState:  http.StatusConflict,
	ErrCodeNotAvailable:  http.StatusConflict,
	ErrCodeSelfBorrow:    http.StatusConflict,
	ErrCodeLoanNotActive: http.StatusConflict,

	// Request contents the server understood but must reject
	ErrCodeDepositMismatch:  http.StatusBadRequest,
	ErrCodeInvalidCondition: http.StatusBadRequest,

	ErrCodeInsufficientFunds: http.StatusUnprocessableEntity,
	ErrCodeLedger:            http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to wire codes
var domainErrorCodeMapping = map[string]string{
	"VALIDATION":            ErrCodeValidation,
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"INVALID_STATE":         ErrCodeInvalidState,
	"NOT_AVAILABLE":         ErrCodeNotAvailable,
	"SELF_BORROW_FORBIDDEN": ErrCodeSelfBorrow,
	"DEPOSIT_MISMATCH":      ErrCodeDepositMismatch,
	"INVALID_CONDITION":     ErrCodeInvalidCondition,
	"LOAN_NOT_ACTIVE":       ErrCodeLoanNotActive,
	"INSUFFICIENT_FUNDS":    ErrCodeInsufficientFunds,
	"LEDGER":                ErrCodeLedger,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// Unknown codes pass through as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
