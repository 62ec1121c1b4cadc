// Package stack provides a LIFO container of integers backed by an owned array.Array.
//
// The stack holds its array through a pointer so that Swap and MoveFrom exchange
// ownership without touching the elements. A stack that has been moved from holds
// no array and must only be reassigned (CopyFrom, MoveFrom) or discarded.
package stack

import (
    "errors"
    "iter"
    "strconv"
    "strings"

    "github.com/aleph-zero/flutterstack/engine/array"
)

var ErrEmpty = errors.New("stack: pop from empty stack")

type Stack struct {
    arr *array.Array
}

func New() *Stack {
    return &Stack{arr: array.New()}
}

// NewSized returns an empty stack whose array has n zeroed slots reserved.
func NewSized(n int) *Stack {
    return &Stack{arr: array.NewWithCapacity(n)}
}

// FromSlice pushes each of values in order.
func FromSlice(values []int) *Stack {
    s := New()
    for _, v := range values {
        s.arr.Push(v)
    }
    return s
}

// FromSeq pushes every value yielded by seq in order.
func FromSeq(seq iter.Seq[int]) *Stack {
    s := New()
    for v := range seq {
        s.arr.Push(v)
    }
    return s
}

// FromRange builds a stack from [first, last) of any traversal, so a pair of
// reverse iterators produces the reversed sequence.
func FromRange[I array.Traversal[I]](first, last I) *Stack {
    return FromSeq(array.Range(first, last))
}

// AssignRange replaces the contents of s with [first, last).
func AssignRange[I array.Traversal[I]](s *Stack, first, last I) {
    s.AssignSeq(array.Range(first, last))
}

func (s *Stack) Clone() *Stack {
    return &Stack{arr: s.arr.Clone()}
}

// CopyFrom replaces the contents of s with a deep copy of other.
func (s *Stack) CopyFrom(other *Stack) {
    if s == other {
        return
    }
    s.arr = other.arr.Clone()
}

// MoveFrom takes other's array; other is left without one.
func (s *Stack) MoveFrom(other *Stack) {
    if s == other {
        return
    }
    s.arr, other.arr = other.arr, nil
}

func (s *Stack) Swap(other *Stack) {
    s.arr, other.arr = other.arr, s.arr
}

func (s *Stack) Push(v int) {
    s.arr.Push(v)
}

// Pop removes and returns the last element. It panics with ErrEmpty on an empty stack.
func (s *Stack) Pop() int {
    n := s.arr.Len()
    if n == 0 {
        panic(ErrEmpty)
    }
    v := *s.arr.Ref(n - 1)
    s.arr.Resize(n - 1)
    return v
}

func (s *Stack) TryPop() (v int, ok bool) {
    if s.arr.Empty() {
        return 0, false
    }
    return s.Pop(), true
}

// Peek returns the last element without removing it.
func (s *Stack) Peek() (v int, ok bool) {
    if s.arr.Empty() {
        return 0, false
    }
    return s.arr.At(-1), true
}

func (s *Stack) At(i int) int {
    return s.arr.At(i)
}

// Ref gives direct access to slot i; i must be below Len.
func (s *Stack) Ref(i int) *int {
    return s.arr.Ref(i)
}

func (s *Stack) Len() int {
    return s.arr.Len()
}

func (s *Stack) Empty() bool {
    return s.arr.Empty()
}

func (s *Stack) Resize(n int) {
    s.arr.Resize(n)
}

func (s *Stack) Assign(n int, value int) {
    s.arr.Assign(n, value)
}

// AssignSeq discards the current contents and pushes every value of seq. Values are
// collected before the old array is dropped so seq may range over s itself.
func (s *Stack) AssignSeq(seq iter.Seq[int]) {
    fresh := array.New()
    for v := range seq {
        fresh.Push(v)
    }
    s.arr = fresh
}

func (s *Stack) Clear() {
    s.arr = array.New()
}

func (s *Stack) Values() iter.Seq[int] {
    return s.arr.Values()
}

func (s *Stack) Backward() iter.Seq2[int, int] {
    return s.arr.Backward()
}

func (s *Stack) Slice() []int {
    return s.arr.Slice()
}

func (s *Stack) Begin() array.Iterator {
    return s.arr.Begin()
}

func (s *Stack) End() array.Iterator {
    return s.arr.End()
}

func (s *Stack) RBegin() array.ReverseIterator {
    return s.arr.RBegin()
}

func (s *Stack) REnd() array.ReverseIterator {
    return s.arr.REnd()
}

// String renders the stack as [e0, e1, ..., en].
func (s *Stack) String() string {
    var sb strings.Builder
    sb.WriteByte('[')
    for i := 0; i < s.Len(); i++ {
        if i > 0 {
            sb.WriteString(", ")
        }
        sb.WriteString(strconv.Itoa(s.At(i)))
    }
    sb.WriteByte(']')
    return sb.String()
}
