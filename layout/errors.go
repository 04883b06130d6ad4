package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrLayoutOverflow marks an item whose wrapped label is taller than a
	// whole page body.
	ErrLayoutOverflow = errors.New("layout: item taller than a page")

	errEmptyShape = errors.New("shaper returned no words")
)

// OverflowError identifies the item that could not be placed.
type OverflowError struct {
	Domain string
	Item   string
	Height float64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%v: %q in %q needs %.1fmm", ErrLayoutOverflow, e.Item, e.Domain, e.Height)
}

func (e *OverflowError) Unwrap() error { return ErrLayoutOverflow }
