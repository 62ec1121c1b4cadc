package stack

import (
    "cmp"
)

// Equal reports whether both stacks hold the same elements in the same order.
func (s *Stack) Equal(other *Stack) bool {
    if s.Len() != other.Len() {
        return false
    }
    for i := 0; i < s.Len(); i++ {
        if s.At(i) != other.At(i) {
            return false
        }
    }
    return true
}

// IsEqual performs the same comparison as Equal by walking both stacks with iterators.
func IsEqual(a, b *Stack) bool {
    if a.Len() != b.Len() {
        return false
    }
    for it1, it2 := a.Begin(), b.Begin(); !it1.Equal(a.End()); it1, it2 = it1.Next(), it2.Next() {
        if it1.Value() != it2.Value() {
            return false
        }
    }
    return true
}

// Compare orders stacks lexicographically: the first differing element decides,
// otherwise the shorter stack sorts first.
func Compare(a, b *Stack) int {
    n := min(a.Len(), b.Len())
    for i := 0; i < n; i++ {
        if c := cmp.Compare(a.At(i), b.At(i)); c != 0 {
            return c
        }
    }
    return cmp.Compare(a.Len(), b.Len())
}

func Less(a, b *Stack) bool {
    return Compare(a, b) < 0
}

func Greater(a, b *Stack) bool {
    return Less(b, a)
}

func LessOrEqual(a, b *Stack) bool {
    return !Less(b, a)
}

func GreaterOrEqual(a, b *Stack) bool {
    return !Less(a, b)
}
