package loyalty

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/clinic-loyalty/internal/models"
)

// Code classifies a failed operation on the wire.
type Code string

const (
	CodeAuth       Code = "AUTH_ERR"
	CodeFunds      Code = "FUNDS_ERR"
	CodeValidation Code = "VALIDATION_ERR"
	CodeConflict   Code = "CONFLICT_ERR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeData       Code = "DATA_ERR"
	CodeDB         Code = "DB_ERR"
	CodeRPC        Code = "RPC_ERR"
	CodeAPI        Code = "API_ERR"
)

// Failure is a business rule rejection. Returning one from inside Atomic rolls the
// transaction back; the engine then reports it as an unsuccessful Result.
type Failure struct {
	Code    Code
	Message string
}

func (f *Failure) Error() string {
	return string(f.Code) + ": " + f.Message
}

func fail(code Code, format string, args ...interface{}) error {
	return &Failure{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Result is the envelope every mutating operation returns.
type Result struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message"`
	UpdatedData *models.DatabaseState `json:"updatedData,omitempty"`
	Error       Code                  `json:"error,omitempty"`
}

func (f *Failure) Result() *Result {
	return &Result{Success: false, Message: f.Message, Error: f.Code}
}
