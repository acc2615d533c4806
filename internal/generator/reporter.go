package generator

// Reporter receives progress and diagnostics from Fill. Aborts are reported
// through TableAborted and are warnings, not failures.
type Reporter interface {
	TableStarted(table string, current, target int64)
	BatchInserted(table string, inserted, current, target int64)
	TableAborted(table string, current, target int64, reason error)
	TableFinished(table string, current, target int64)
}

type NopReporter struct{}

func (NopReporter) TableStarted(string, int64, int64)         {}
func (NopReporter) BatchInserted(string, int64, int64, int64) {}
func (NopReporter) TableAborted(string, int64, int64, error)  {}
func (NopReporter) TableFinished(string, int64, int64)        {}
