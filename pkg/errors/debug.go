package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PGFault holds the postgres diagnostics found in an error chain. Both the pgx
// driver used by gorm and lib/pq used by goose are recognised.
type PGFault struct {
	Code       string
	Message    string
	Detail     string
	Table      string
	Column     string
	Constraint string
}

// Trace is the log-friendly breakdown of an error.
type Trace struct {
	Message string
	Code    Code
	Chain   []string
	PG      *PGFault
}

// Describe walks err's chain and extracts codes and database diagnostics.
func Describe(err error) Trace {
	if err == nil {
		return Trace{}
	}

	trace := Trace{Message: err.Error()}
	if typed := As(err); typed != nil {
		trace.Code = typed.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		trace.Chain = append(trace.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	trace.PG = pgFault(err)
	return trace
}

// Fields flattens the trace for structured logging.
func (t Trace) Fields() map[string]any {
	fields := map[string]any{
		"error":       t.Message,
		"error_chain": t.Chain,
	}
	if t.Code != "" {
		fields["error_code"] = string(t.Code)
	}
	if t.PG != nil {
		fields["pg_code"] = t.PG.Code
		fields["pg_message"] = t.PG.Message
		fields["pg_detail"] = t.PG.Detail
		fields["pg_table"] = t.PG.Table
		fields["pg_column"] = t.PG.Column
		fields["pg_constraint"] = t.PG.Constraint
	}
	return fields
}

func pgFault(err error) *PGFault {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &PGFault{
			Code:       pgxErr.Code,
			Message:    pgxErr.Message,
			Detail:     pgxErr.Detail,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Constraint: pgxErr.ConstraintName,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGFault{
			Code:       string(pqErr.Code),
			Message:    pqErr.Message,
			Detail:     pqErr.Detail,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Constraint: pqErr.Constraint,
		}
	}
	return nil
}
