package automation

import (
	"errors"
	"fmt"
)

// Validation errors raised by the compiler before any request is issued.
// Check them with errors.Is; use errors.As with *CompileError to get the
// machine code and the offending action.
var (
	ErrMissingName             = errors.New("automation: name is required")
	ErrMissingTriggerType      = errors.New("automation: trigger type is required")
	ErrTriggerParamsJSON       = errors.New("automation: trigger params are not valid JSON")
	ErrVariablesJSON           = errors.New("automation: template variables are not valid JSON")
	ErrWebhookBodyJSON         = errors.New("automation: webhook body is not valid JSON")
	ErrTaskConditionsJSON      = errors.New("automation: task conditions are not valid JSON")
	ErrUnknownActionParamsJSON = errors.New("automation: action params are not valid JSON")
	ErrMissingActionParam      = errors.New("automation: required action parameter is blank")
	ErrEmptyActions            = errors.New("automation: at least one action is required")
)

const (
	CodeMissingName             = "name_required"
	CodeMissingTriggerType      = "trigger_type_required"
	CodeTriggerParamsJSON       = "trigger_params_json"
	CodeVariablesJSON           = "variables_json"
	CodeWebhookBodyJSON         = "body_json"
	CodeTaskConditionsJSON      = "task_conditions_json"
	CodeUnknownActionParamsJSON = "params_json"
	CodeMissingActionParam      = "action_param_required"
	CodeEmptyActions            = "actions_empty"
)

// CompileError is the single failure returned by Compile. Index and LocalID
// identify the offending action and are -1/"" for rule-level failures.
type CompileError struct {
	Code    string
	Field   string
	Index   int
	LocalID string
	Err     error
	Cause   error
}

func (e *CompileError) Error() string {
	msg := e.Err.Error()
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (action %d", msg, e.Index)
		if e.Field != "" {
			msg += ", field " + e.Field
		}
		msg += ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *CompileError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func newCompileError(code string, sentinel error, field string, cause error) *CompileError {
	return &CompileError{Code: code, Field: field, Index: -1, Err: sentinel, Cause: cause}
}

// ErrorCode extracts the machine code from a compile failure, or "" when err
// did not come from the compiler.
func ErrorCode(err error) string {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
