package records

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a write or reload that targets a record missing from storage.
	ErrNotFound = errors.New("records: record not found")
	// ErrUnsupportedFilter reports a filter node the connector cannot execute.
	ErrUnsupportedFilter = errors.New("records: unsupported filter")
	// ErrUnsupportedOperation reports a connector operation with no implementation.
	ErrUnsupportedOperation = errors.New("records: unsupported operation")
	// ErrInvalidArgument reports a negative skip, a non positive limit or batch size.
	ErrInvalidArgument = errors.New("records: invalid argument")
	// ErrValidation is returned by Instance.Validate when a validator rejects the instance.
	ErrValidation = errors.New("records: validation failed")
	// ErrEmptyExpression reports an Expr filter or rule with no source text.
	ErrEmptyExpression = errors.New("records: empty expression")

	ErrTableRequired     = errors.New("records: table name is required")
	ErrInitRequired      = errors.New("records: init function is required")
	ErrConnectorRequired = errors.New("records: connector is required")
)

// OperationError captures the model operation and table alongside the
// originating error.
type OperationError struct {
	Op    string
	Table string
	Err   error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("records: %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapOperationError(op, table string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}
	return &OperationError{Op: op, Table: table, Err: err}
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// Evaluation phases recorded on EvaluationError.
const (
	PhaseCompile = "compile"
	PhaseRun     = "run"
	PhaseResult  = "result"
)

// EvaluationError reports a failed expression along with the engine that
// ran it and the phase it failed in.
type EvaluationError struct {
	Engine string
	Phase  string
	Expr   string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	phase := e.Phase
	if phase == "" {
		phase = PhaseRun
	}
	return fmt.Sprintf("records: %s %s %q: %v", e.Engine, phase, e.Expr, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// evaluationFailure wraps err for engine. An EvaluationError already in the
// chain is completed in place rather than wrapped twice.
func evaluationFailure(engine, phase, expr string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Phase == "" {
			evalErr.Phase = phase
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		return err
	}
	return &EvaluationError{Engine: engine, Phase: phase, Expr: expr, Err: err}
}

func emptyExpression(engine string) error {
	return &EvaluationError{Engine: engine, Phase: PhaseCompile, Err: ErrEmptyExpression}
}
