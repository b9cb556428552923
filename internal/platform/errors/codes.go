// Package errors provides structured error handling with i18n support.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session lifecycle errors
	CodeSessionExists    Code = "SESSION_ALREADY_EXISTS"
	CodeUnknownSession   Code = "SESSION_NOT_FOUND"
	CodeSessionEnded     Code = "SESSION_ALREADY_ENDED"
	CodeInvalidMode      Code = "SESSION_INVALID_MODE"
	CodeInvalidMaxRounds Code = "SESSION_INVALID_MAX_ROUNDS"
	CodeMissingTarget    Code = "SESSION_MISSING_TARGET"

	// Game rule errors
	CodeItemNotInInventory Code = "ITEM_NOT_IN_INVENTORY"
	CodeRoundsExhausted    Code = "ROUNDS_EXHAUSTED"

	// Recipe errors
	CodeUnknownElement     Code = "ELEMENT_NOT_IN_VOCABULARY"
	CodeRecipeTableInvalid Code = "RECIPE_TABLE_INVALID"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidMode,
		CodeInvalidMaxRounds,
		CodeMissingTarget,
		CodeUnknownElement,
		CodeRecipeTableInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow the operation
	case CodeSessionEnded,
		CodeRoundsExhausted,
		CodeItemNotInInventory:
		return codes.FailedPrecondition

	// NotFound
	case CodeUnknownSession:
		return codes.NotFound

	// AlreadyExists
	case CodeSessionExists:
		return codes.AlreadyExists

	default:
		return codes.Internal
	}
}
