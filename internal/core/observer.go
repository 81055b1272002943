package core

import "log/slog"

// LogObserver writes assembly diagnostics to a structured logger.
//
// Accepted records log at info, rows dropped only because they lack trailing
// columns log at warn, and ordinary noise (headers, substations, blank rows)
// logs at debug.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns an observer writing to logger, or to the default
// logger when nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) RowAccepted(ev RowEvent) {
	o.Logger.Info("record extracted",
		"key", ev.Verdict.Code,
		"label", ev.Verdict.Label,
		"region", ev.Region,
		"page", ev.Page,
		"row", ev.Row,
		"replaced", ev.Replaced,
	)
}

func (o *LogObserver) RowRejected(ev RowEvent) {
	if ev.Verdict.Reason == RejectIncomplete {
		o.Logger.Warn("row skipped: missing trailing columns",
			"key", ev.Verdict.Code,
			"label", ev.Verdict.Label,
			"region", ev.Region,
			"page", ev.Page,
			"row", ev.Row,
			"columns", ev.Columns,
		)
		return
	}
	o.Logger.Debug("row rejected",
		"reason", ev.Verdict.Reason.String(),
		"region", ev.Region,
		"row", ev.Row,
		"columns", ev.Columns,
	)
}
