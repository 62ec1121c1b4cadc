package array

import (
    "iter"
)

// Traversal is satisfied by both iterator kinds so ranges can be consumed without
// caring about direction.
type Traversal[I any] interface {
    Value() int
    Next() I
    Equal(I) bool
}

// Range yields every value in [first, last).
func Range[I Traversal[I]](first, last I) iter.Seq[int] {
    return func(yield func(int) bool) {
        for it := first; !it.Equal(last); it = it.Next() {
            if !yield(it.Value()) {
                return
            }
        }
    }
}

// Iterator is a random-access position into an Array. Any operation that
// reallocates or drops the buffer (Push past capacity, Resize, Assign, Clear, Take)
// invalidates it.
type Iterator struct {
    arr *Array
    pos int
}

func (it Iterator) Value() int {
    return it.arr.buf[it.pos]
}

func (it Iterator) Set(v int) {
    it.arr.buf[it.pos] = v
}

func (it Iterator) Next() Iterator {
    return it.Add(1)
}

func (it Iterator) Prev() Iterator {
    return it.Add(-1)
}

func (it Iterator) Add(n int) Iterator {
    return Iterator{arr: it.arr, pos: it.pos + n}
}

// Distance returns it - other; both must point into the same array.
func (it Iterator) Distance(other Iterator) int {
    return it.pos - other.pos
}

func (it Iterator) Equal(other Iterator) bool {
    return it.arr == other.arr && it.pos == other.pos
}

func (it Iterator) Pos() int {
    return it.pos
}

// ReverseIterator walks an Array back to front. It refers to the element just
// before its base iterator, so Reverse(a.End()) dereferences the last element.
type ReverseIterator struct {
    base Iterator
}

func Reverse(it Iterator) ReverseIterator {
    return ReverseIterator{base: it}
}

func (r ReverseIterator) Value() int {
    return r.base.Prev().Value()
}

func (r ReverseIterator) Set(v int) {
    r.base.Prev().Set(v)
}

func (r ReverseIterator) Next() ReverseIterator {
    return ReverseIterator{base: r.base.Prev()}
}

func (r ReverseIterator) Prev() ReverseIterator {
    return ReverseIterator{base: r.base.Next()}
}

func (r ReverseIterator) Add(n int) ReverseIterator {
    return ReverseIterator{base: r.base.Add(-n)}
}

func (r ReverseIterator) Distance(other ReverseIterator) int {
    return other.base.Distance(r.base)
}

func (r ReverseIterator) Equal(other ReverseIterator) bool {
    return r.base.Equal(other.base)
}

func (r ReverseIterator) Base() Iterator {
    return r.base
}
