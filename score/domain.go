package score

import "fmt"

// Domain is a named column of scored items.
type Domain struct {
	Name  string
	Items []Item
}

// Percentage returns sum(value) / (2 * len(items)) * 100, or 0 for an empty
// domain.
func (d Domain) Percentage() float64 {
	if len(d.Items) == 0 {
		return 0
	}
	total := 0
	for _, it := range d.Items {
		total += int(it.Value)
	}
	return float64(total) / float64(2*len(d.Items)) * 100
}

// HeaderLabel is the column header text, e.g. "Maths (75%)".
func (d Domain) HeaderLabel() string {
	return fmt.Sprintf("%s (%.0f%%)", d.Name, d.Percentage())
}

// Section is one top-level evaluation category flattened into domains.
type Section struct {
	Key     string
	Domains []Domain
}

// TableSpec describes one grid table.
type TableSpec struct {
	Title           string
	Domains         []Domain
	ColumnsPerBatch int
	// TextFraction splits a column between the label and the symbol sub-cell.
	TextFraction    float64
	PadShortBatches bool
}

// Validate checks the batching parameters.
func (t TableSpec) Validate() error {
	if t.ColumnsPerBatch < 1 {
		return fmt.Errorf("table %q: columns per batch %d must be >= 1", t.Title, t.ColumnsPerBatch)
	}
	if !(t.TextFraction > 0 && t.TextFraction < 1) {
		return fmt.Errorf("table %q: text fraction %g must be in (0,1)", t.Title, t.TextFraction)
	}
	return nil
}

// Empty reports whether the table has nothing to draw.
func (t TableSpec) Empty() bool { return len(t.Domains) == 0 }

// Batches partitions the domains, in order, into groups of ColumnsPerBatch.
// The last batch may be short.
func (t TableSpec) Batches() [][]Domain {
	n := t.ColumnsPerBatch
	if n < 1 {
		n = 1
	}
	var out [][]Domain
	for i := 0; i < len(t.Domains); i += n {
		end := min(i+n, len(t.Domains))
		out = append(out, t.Domains[i:end])
	}
	return out
}
