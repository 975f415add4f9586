package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/forgottenfelines/tnr-intake-api/pkg/errors"
)

// DefaultGuardTimeout bounds single-row writes when no timeout is configured.
const DefaultGuardTimeout = 5 * time.Second

// ExecFunc is a store command returning its driver result.
type ExecFunc func() (sql.Result, error)

// GuardedExec races a mutating store command against a deadline so a row held
// by a stalled transaction surfaces as lock contention, never as "missing".
//
// Outcomes:
//   - command first, rows affected      -> nil
//   - command first, zero rows affected -> ErrWrongState (the WHERE-clause
//     state precondition did not hold)
//   - deadline first                    -> ErrLockContention
//
// Losing the race does not cancel the underlying command; it may still
// complete later. Callers must re-validate state before acting on anything
// they observe afterwards.
func GuardedExec(ctx context.Context, timeout time.Duration, fn ExecFunc) error {
	if timeout <= 0 {
		timeout = DefaultGuardTimeout
	}

	type outcome struct {
		res sql.Result
		err error
	}
	// Buffered so the abandoned command can finish without leaking a
	// goroutine blocked on send.
	done := make(chan outcome, 1)
	go func() {
		res, err := fn()
		done <- outcome{res: res, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		if o.err != nil {
			return fmt.Errorf("guarded exec: %w", o.err)
		}
		rows, err := o.res.RowsAffected()
		if err != nil {
			return fmt.Errorf("guarded exec rows affected: %w", err)
		}
		if rows == 0 {
			return appErrors.ErrWrongState
		}
		return nil
	case <-timer.C:
		return appErrors.ErrLockContention
	case <-ctx.Done():
		return appErrors.Wrap(ctx.Err(), appErrors.ErrLockContention.Code,
			appErrors.ErrLockContention.Status, appErrors.ErrLockContention.Message)
	}
}
