package core

// assemble.go drives classification and normalization over extracted regions
// and collects the resulting records into a keyed Store.
//
// Processing is strictly sequential: regions in order, rows within a region
// in extraction order, fields in layout order. Given the same regions the
// store, and its serialized form, is always identical.

// Region is one extracted table area: a grid of raw text cells.
type Region struct {
	Index int        // Zero-based position in extraction order
	Page  int        // 1-based source page, 0 when the source has no pages
	Name  string     // Sheet or table name, when the source has one
	Rows  [][]string // Raw rows, positionally meaningful
}

// RowEvent describes one classified row for diagnostics.
type RowEvent struct {
	Layout   string
	Region   int
	Page     int
	Row      int // Zero-based row index within the region
	Columns  int
	Verdict  Verdict
	Record   *Record // Set for accepted rows
	Replaced bool    // The record replaced an earlier one with the same key
}

// Observer receives one event per accepted record and per rejected row.
// Observers are for operator visibility only; they cannot change the store.
type Observer interface {
	RowAccepted(ev RowEvent)
	RowRejected(ev RowEvent)
}

// Stats summarizes an assembly run.
type Stats struct {
	Regions  int            `json:"regions"`
	Rows     int            `json:"rows"`
	Accepted int            `json:"accepted"`
	Replaced int            `json:"replaced"`
	Rejected map[string]int `json:"rejected"`
}

// Assembler builds a Store from regions for one layout.
// An Assembler is not safe for concurrent use.
type Assembler struct {
	layout   Layout
	observer Observer
	store    *Store
	stats    Stats
}

// NewAssembler creates an assembler. A nil observer discards events.
func NewAssembler(layout Layout, observer Observer) *Assembler {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Assembler{
		layout:   layout,
		observer: observer,
		store:    NewStore(),
		stats:    Stats{Rejected: make(map[string]int)},
	}
}

// Assemble classifies and normalizes every row of every region and returns
// the resulting store.
func Assemble(regions []Region, layout Layout, observer Observer) *Store {
	a := NewAssembler(layout, observer)
	for _, r := range regions {
		a.AddRegion(r)
	}
	return a.Store()
}

// AddRegion processes all rows of one region.
func (a *Assembler) AddRegion(region Region) {
	a.stats.Regions++

	for i, row := range region.Rows {
		a.stats.Rows++
		ev := RowEvent{
			Layout:  a.layout.Key,
			Region:  region.Index,
			Page:    region.Page,
			Row:     i,
			Columns: len(row),
			Verdict: a.layout.Classify(row),
		}

		if ev.Verdict.Accepted() && len(row) < a.layout.CompleteColumns && !a.layout.KeepIncomplete {
			ev.Verdict.Reason = RejectIncomplete
		}

		if !ev.Verdict.Accepted() {
			a.stats.Rejected[ev.Verdict.Reason.String()]++
			a.observer.RowRejected(ev)
			continue
		}

		rec := a.buildRecord(row, ev.Verdict.Code)
		ev.Record = &rec
		ev.Replaced = a.store.Put(rec)
		a.stats.Accepted++
		if ev.Replaced {
			a.stats.Replaced++
		}
		a.observer.RowAccepted(ev)
	}
}

// buildRecord normalizes every layout field of an accepted row. Columns
// missing from a short row are absent.
func (a *Assembler) buildRecord(row []string, key string) Record {
	fields := make([]Field, len(a.layout.Fields))
	for i, spec := range a.layout.Fields {
		v := AbsentValue()
		if spec.Column < len(row) {
			v = NormalizeWithUnits(row[spec.Column], spec.Units)
		}
		fields[i] = Field{Name: spec.Name, Value: v}
	}
	return Record{Key: key, Fields: fields}
}

// Store returns the store built so far. The assembler must not be used after
// the store has been handed off.
func (a *Assembler) Store() *Store { return a.store }

// Stats returns counters for the rows seen so far.
func (a *Assembler) Stats() Stats {
	out := a.stats
	out.Rejected = make(map[string]int, len(a.stats.Rejected))
	for k, v := range a.stats.Rejected {
		out.Rejected[k] = v
	}
	return out
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) RowAccepted(RowEvent) {}
func (NopObserver) RowRejected(RowEvent) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (o Observers) RowAccepted(ev RowEvent) {
	for _, obs := range o {
		obs.RowAccepted(ev)
	}
}

func (o Observers) RowRejected(ev RowEvent) {
	for _, obs := range o {
		obs.RowRejected(ev)
	}
}
