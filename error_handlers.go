package taskfarm

import (
	lg "github.com/Andrej220/go-utils/zlog"
)

// reportInternalError reports a dispatcher-side failure that is not tied
// to a running executor.
//
// The error is always logged; the handler, if registered, is called after.
func reportInternalError(o *Options, e error) {
	lg.FromContext(o.Context).Error("internal error", lg.Any("error", e))
	if o.OnInternalError != nil {
		o.OnInternalError(e)
	}
}

// reportTaskFault reports an executor failure on the given worker.
//
// Faults do not stop the worker goroutine; the slot itself stays wedged
// unless the supervisor is enabled.
func reportTaskFault(o *Options, worker int, err error) {
	lg.FromContext(o.Context).Error("executor fault",
		lg.Int("worker", worker),
		lg.Any("error", err),
	)
	if o.OnTaskFault != nil {
		o.OnTaskFault(worker, err)
	}
}
