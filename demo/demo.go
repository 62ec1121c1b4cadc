// Package demo walks the stack through construction from raw values, forward and
// reverse iterator ranges, printing each traversal.
package demo

import (
	"errors"
	"fmt"
	"github.com/aleph-zero/flutterstack/engine/array"
	"github.com/aleph-zero/flutterstack/engine/stack"
	"io"
	"iter"
	"log/slog"
	"slices"
)

var Values = []int{19, 47, 74, 91}

var ErrMismatch = errors.New("demo: round trip mismatch")

// Run prints four traversals to w: a stack built from Values, a copy built from its
// forward range, the copy's copy walked in reverse, and a stack built from that
// reverse range.
func Run(w io.Writer, logger *slog.Logger) error {
	a := stack.FromSlice(Values)
	writeLine(w, array.Range(a.Begin(), a.End()))

	b := stack.FromRange(a.Begin(), a.End())
	if !stack.IsEqual(a, b) {
		return fmt.Errorf("%w: %s != %s", ErrMismatch, a, b)
	}
	writeLine(w, b.Values())

	c := stack.FromRange(b.Begin(), b.End())
	if !slices.Equal(c.Slice(), b.Slice()) {
		return fmt.Errorf("%w: %s != %s", ErrMismatch, c, b)
	}
	writeLine(w, array.Range(c.RBegin(), c.REnd()))

	d := stack.FromRange(c.RBegin(), c.REnd())
	writeLine(w, d.Values())

	logger.Info("Demo complete", "stack", a.String(), "reversed", d.String(), "length", a.Len())
	return nil
}

func writeLine(w io.Writer, values iter.Seq[int]) {
	for v := range values {
		fmt.Fprintf(w, "%d ", v)
	}
	fmt.Fprintln(w)
}
