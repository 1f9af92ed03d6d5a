package logx

import "log/slog"

// ProgressFunc is called by the row drivers after every emitted row.
// It is advisory only; drivers never wait on it.
type ProgressFunc func(completed, total int)

// Report calls fn when it is set.
func (fn ProgressFunc) Report(completed, total int) {
	if fn != nil {
		fn(completed, total)
	}
}

// StepProgress logs a debug record each time another tenth of the rows is done.
func StepProgress(msg string, loggerProv LoggerProvider) ProgressFunc {
	lastStep := -1
	return func(completed, total int) {
		if total <= 0 {
			return
		}
		step := completed * 10 / total
		if step == lastStep {
			return
		}
		lastStep = step
		if loggerProv == nil {
			return
		}
		Log(msg, loggerProv.Logger(), slog.LevelDebug, 3,
			`rows`, completed, `total`, total, `percent`, step*10)
	}
}
