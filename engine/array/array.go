// Package array implements a growable, contiguous buffer of integers with explicit
// capacity and length bookkeeping.
package array

import (
    "errors"
    "iter"
    "math"
)

const (
    // Sentinel is returned by Get for any index outside [0, Len()).
    Sentinel = -1

    // MaxLength is the largest length Resize accepts; growing to it needs a capacity of 2n.
    MaxLength = math.MaxInt / 2
)

var ErrTooLarge = errors.New("array: length exceeds MaxLength")

// Array owns a single buffer of capacity slots, of which the first length are live.
// The zero value is the empty, capacity-0 state; Push allocates from it.
//
// An Array is not safe for concurrent use.
type Array struct {
    buf    []int
    length int
}

// New returns an empty array with capacity 1.
func New() *Array {
    return &Array{buf: make([]int, 1)}
}

// NewWithCapacity returns an empty array with n zeroed slots allocated.
func NewWithCapacity(n int) *Array {
    if n <= 0 {
        return &Array{}
    }
    return &Array{buf: make([]int, n)}
}

// Clone returns an independent copy sharing no storage with a.
func (a *Array) Clone() *Array {
    c := NewWithCapacity(len(a.buf))
    copy(c.buf, a.buf[:a.length])
    c.length = a.length
    return c
}

// Move transfers a's buffer into a new Array and leaves a empty with capacity 0.
func (a *Array) Move() *Array {
    m := &Array{}
    m.Take(a)
    return m
}

// Take replaces a's contents with src's buffer, leaving src empty with capacity 0.
func (a *Array) Take(src *Array) {
    if a == src {
        return
    }
    a.buf, a.length = src.buf, src.length
    src.buf, src.length = nil, 0
}

// Push appends v, doubling the capacity when the buffer is full.
func (a *Array) Push(v int) {
    if a.length == len(a.buf) {
        a.grow()
    }
    a.buf[a.length] = v
    a.length++
}

func (a *Array) grow() {
    capacity := 2 * len(a.buf)
    if capacity == 0 {
        capacity = 1
    }
    buf := make([]int, capacity)
    copy(buf, a.buf[:a.length])
    a.buf = buf
}

// Get returns the element at index, or Sentinel when index is out of range.
func (a *Array) Get(index int) int {
    if index < 0 || index >= a.length {
        return Sentinel
    }
    return a.buf[index]
}

// At returns the element at index, counting negative indices from the end and
// clamping anything still out of range to the first or last element.
// An empty array yields Sentinel.
func (a *Array) At(index int) int {
    if a.length == 0 {
        return Sentinel
    }
    if index < 0 {
        index += a.length
    }
    switch {
    case index < 0:
        return a.buf[0]
    case index >= a.length:
        return a.buf[a.length-1]
    default:
        return a.buf[index]
    }
}

// Resize changes the length to n. Growing past the capacity rebuilds into a buffer of
// capacity 2n; any other change rebuilds from a fresh capacity-1 array by pushing
// the first n elements. New slots are zero either way. Negative n is treated as 0.
// Resize panics with ErrTooLarge if n exceeds MaxLength.
func (a *Array) Resize(n int) {
    if n < 0 {
        n = 0
    }
    if n > MaxLength {
        panic(ErrTooLarge)
    }
    if n == a.length {
        return
    }

    var tmp *Array
    if n > len(a.buf) {
        tmp = NewWithCapacity(2 * n)
        for i := 0; i < a.length; i++ {
            tmp.Push(a.buf[i])
        }
        for i := a.length; i < n; i++ {
            tmp.Push(0)
        }
    } else {
        tmp = New()
        for i := 0; i < n; i++ {
            if i < a.length {
                tmp.Push(a.buf[i])
            } else {
                tmp.Push(0)
            }
        }
    }
    a.Take(tmp)
}

// Assign clears a and pushes value n times.
func (a *Array) Assign(n int, value int) {
    a.Clear()
    for i := 0; i < n; i++ {
        a.Push(value)
    }
}

// Clear drops the buffer; length and capacity become 0.
func (a *Array) Clear() {
    a.buf = nil
    a.length = 0
}

func (a *Array) Len() int {
    return a.length
}

func (a *Array) Cap() int {
    return len(a.buf)
}

func (a *Array) Empty() bool {
    return a.length == 0
}

// Slice returns a copy of the live elements.
func (a *Array) Slice() []int {
    out := make([]int, a.length)
    copy(out, a.buf[:a.length])
    return out
}

// Ref returns a pointer to the slot at index. The caller must ensure index < Len();
// out-of-range indices panic.
func (a *Array) Ref(index int) *int {
    return &a.buf[:a.length][index]
}

// Values yields the live elements front to back.
func (a *Array) Values() iter.Seq[int] {
    return func(yield func(int) bool) {
        for i := 0; i < a.length; i++ {
            if !yield(a.buf[i]) {
                return
            }
        }
    }
}

// Backward yields index/value pairs back to front.
func (a *Array) Backward() iter.Seq2[int, int] {
    return func(yield func(int, int) bool) {
        for i := a.length - 1; i >= 0; i-- {
            if !yield(i, a.buf[i]) {
                return
            }
        }
    }
}

func (a *Array) Begin() Iterator {
    return Iterator{arr: a}
}

func (a *Array) End() Iterator {
    return Iterator{arr: a, pos: a.length}
}

func (a *Array) RBegin() ReverseIterator {
    return Reverse(a.End())
}

func (a *Array) REnd() ReverseIterator {
    return Reverse(a.Begin())
}
