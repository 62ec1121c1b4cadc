package registry

import (
    "context"
    "errors"
    "math"
    "github.com/aleph-zero/flutterstack/engine/stack"
    "github.com/google/go-cmp/cmp"
    "github.com/google/go-cmp/cmp/cmpopts"
    "github.com/stretchr/testify/require"
    "os"
    "path/filepath"
    "testing"
)

func setupSuite(tb testing.TB) (string, Service) {
    dir := tb.TempDir()
    svc := NewService(dir)
    if err := svc.Open(); err != nil {
        tb.Fatal(err)
    }
    return dir, svc
}

func TestServiceProvider_CreateAndGet(t *testing.T) {
    ctx := context.Background()
    _, svc := setupSuite(t)

    tests := []struct {
        name     string
        values   []int
        expected *Model
    }{
        {"empty", nil, &Model{Values: []int{}, Length: 0, Rendered: "[]"}},
        {"scenario", []int{19, 47, 74, 91}, &Model{Values: []int{19, 47, 74, 91}, Length: 4, Rendered: "[19, 47, 74, 91]"}},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            created, err := svc.Create(ctx, tt.values)
            require.NoError(t, err)
            require.NotEmpty(t, created.ID)
            if diff := cmp.Diff(tt.expected, created, cmpopts.IgnoreFields(Model{}, "ID")); diff != "" {
                t.Errorf("model does not match (-expected, +received):\n%s", diff)
            }

            got, err := svc.Get(ctx, created.ID)
            require.NoError(t, err)
            if diff := cmp.Diff(created, got); diff != "" {
                t.Errorf("model does not match (-expected, +received):\n%s", diff)
            }
        })
    }
}

func TestServiceProvider_PushPop(t *testing.T) {
    ctx := context.Background()
    _, svc := setupSuite(t)

    m, err := svc.Create(ctx, nil)
    require.NoError(t, err)

    m, err = svc.Push(ctx, m.ID, 1, 2, 3)
    require.NoError(t, err)
    require.Equal(t, []int{1, 2, 3}, m.Values)

    for _, expected := range []int{3, 2, 1} {
        v, err := svc.Pop(ctx, m.ID)
        require.NoError(t, err)
        require.Equal(t, expected, v)
    }

    _, err = svc.Pop(ctx, m.ID)
    require.ErrorIs(t, err, Error{ErrorCode: EmptyStack})
    require.ErrorIs(t, err, stack.ErrEmpty)
}

func TestServiceProvider_NoSuchStack(t *testing.T) {
    ctx := context.Background()
    _, svc := setupSuite(t)
    m, err := svc.Create(ctx, []int{1})
    require.NoError(t, err)

    missing := "does-not-exist"
    calls := map[string]func() error{
        "get":     func() error { _, err := svc.Get(ctx, missing); return err },
        "push":    func() error { _, err := svc.Push(ctx, missing, 1); return err },
        "pop":     func() error { _, err := svc.Pop(ctx, missing); return err },
        "resize":  func() error { _, err := svc.Resize(ctx, missing, 1); return err },
        "assign":  func() error { _, err := svc.Assign(ctx, missing, 1, 1); return err },
        "clone":   func() error { _, err := svc.Clone(ctx, missing); return err },
        "reverse": func() error { _, err := svc.Reverse(ctx, missing); return err },
        "swap":    func() error { return svc.Swap(ctx, m.ID, missing) },
        "compare": func() error { _, err := svc.Compare(ctx, missing, m.ID); return err },
        "delete":  func() error { return svc.Delete(ctx, missing) },
    }

    for name, call := range calls {
        t.Run(name, func(t *testing.T) {
            err := call()
            require.Error(t, err)
            require.True(t, errors.Is(err, Error{ErrorCode: NoSuchStack}))
            require.False(t, errors.Is(err, Error{ErrorCode: EmptyStack}))
        })
    }
}

func TestServiceProvider_ResizeAssign(t *testing.T) {
    ctx := context.Background()
    _, svc := setupSuite(t)

    m, err := svc.Create(ctx, []int{1, 2, 3})
    require.NoError(t, err)

    m, err = svc.Resize(ctx, m.ID, 5)
    require.NoError(t, err)
    require.Equal(t, []int{1, 2, 3, 0, 0}, m.Values)

    m, err = svc.Resize(ctx, m.ID, 1)
    require.NoError(t, err)
    require.Equal(t, []int{1}, m.Values)

    m, err = svc.Assign(ctx, m.ID, 3, 7)
    require.NoError(t, err)
    require.Equal(t, []int{7, 7, 7}, m.Values)

    _, err = svc.Resize(ctx, m.ID, -1)
    require.ErrorIs(t, err, Error{ErrorCode: InvalidArgument})
    _, err = svc.Assign(ctx, m.ID, -1, 0)
    require.ErrorIs(t, err, Error{ErrorCode: InvalidArgument})
}

func TestServiceProvider_MaxLength(t *testing.T) {
    ctx := context.Background()
    svc := NewServiceWithConfig(NewConfig(WithDirectory(t.TempDir()), WithMaxLength(4)))

    m, err := svc.Create(ctx, []int{1, 2, 3})
    require.NoError(t, err)

    tests := []struct {
        name string
        call func() error
    }{
        {"create", func() error { _, err := svc.Create(ctx, []int{1, 2, 3, 4, 5}); return err }},
        {"push", func() error { _, err := svc.Push(ctx, m.ID, 4, 5); return err }},
        {"resize", func() error { _, err := svc.Resize(ctx, m.ID, 5); return err }},
        {"resize huge", func() error { _, err := svc.Resize(ctx, m.ID, math.MaxInt); return err }},
        {"assign", func() error { _, err := svc.Assign(ctx, m.ID, 1<<40, 0); return err }},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            require.ErrorIs(t, tt.call(), Error{ErrorCode: InvalidArgument})
        })
    }

    got, err := svc.Get(ctx, m.ID)
    require.NoError(t, err)
    require.Equal(t, []int{1, 2, 3}, got.Values)
    require.Len(t, svc.List(ctx), 1)

    m, err = svc.Push(ctx, m.ID, 4)
    require.NoError(t, err)
    require.Equal(t, 4, m.Length)

    m, err = svc.Resize(ctx, m.ID, 4)
    require.NoError(t, err)
    require.Equal(t, []int{1, 2, 3, 4}, m.Values)
}

func TestServiceProvider_PersistsEveryMutation(t *testing.T) {
    ctx := context.Background()
    dir, svc := setupSuite(t)

    reopen := func(t *testing.T) Service {
        t.Helper()
        reopened := NewService(dir)
        require.NoError(t, reopened.Open())
        return reopened
    }

    a, err := svc.Create(ctx, []int{19, 47, 74, 91})
    require.NoError(t, err)
    got, err := reopen(t).Get(ctx, a.ID)
    require.NoError(t, err)
    require.Equal(t, []int{19, 47, 74, 91}, got.Values)

    b, err := svc.Reverse(ctx, a.ID)
    require.NoError(t, err)
    c, err := svc.Clone(ctx, a.ID)
    require.NoError(t, err)

    tests := []struct {
        name     string
        mutation func() error
        id       string
        expected []int
    }{
        {"push", func() error { _, err := svc.Push(ctx, a.ID, 100); return err }, a.ID, []int{19, 47, 74, 91, 100}},
        {"pop", func() error { _, err := svc.Pop(ctx, a.ID); return err }, a.ID, []int{19, 47, 74, 91}},
        {"resize", func() error { _, err := svc.Resize(ctx, a.ID, 2); return err }, a.ID, []int{19, 47}},
        {"assign", func() error { _, err := svc.Assign(ctx, c.ID, 3, 5); return err }, c.ID, []int{5, 5, 5}},
        {"swap", func() error { return svc.Swap(ctx, a.ID, b.ID) }, a.ID, []int{91, 74, 47, 19}},
        {"reversed", func() error { return nil }, b.ID, []int{19, 47}},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            require.NoError(t, tt.mutation())
            got, err := reopen(t).Get(ctx, tt.id)
            require.NoError(t, err)
            require.Equal(t, tt.expected, got.Values)
        })
    }

    require.NoError(t, svc.Delete(ctx, c.ID))
    _, err = reopen(t).Get(ctx, c.ID)
    require.ErrorIs(t, err, Error{ErrorCode: NoSuchStack})
    require.Len(t, reopen(t).List(ctx), 2)

    entries, err := os.ReadDir(dir)
    require.NoError(t, err)
    require.Len(t, entries, 1)
}

func TestServiceProvider_DeriveAndCompare(t *testing.T) {
    ctx := context.Background()
    _, svc := setupSuite(t)

    a, err := svc.Create(ctx, []int{19, 47, 74, 91})
    require.NoError(t, err)

    reversed, err := svc.Reverse(ctx, a.ID)
    require.NoError(t, err)
    require.NotEqual(t, a.ID, reversed.ID)
    require.Equal(t, []int{91, 74, 47, 19}, reversed.Values)

    cloned, err := svc.Clone(ctx, a.ID)
    require.NoError(t, err)
    require.Equal(t, a.Values, cloned.Values)

    c, err := svc.Compare(ctx, a.ID, cloned.ID)
    require.NoError(t, err)
    require.Equal(t, &Comparison{Compare: 0, Equal: true}, c)

    c, err = svc.Compare(ctx, a.ID, reversed.ID)
    require.NoError(t, err)
    require.Equal(t, &Comparison{Compare: -1, Equal: false}, c)

    _, err = svc.Push(ctx, cloned.ID, 100)
    require.NoError(t, err)
    original, err := svc.Get(ctx, a.ID)
    require.NoError(t, err)
    require.Equal(t, []int{19, 47, 74, 91}, original.Values)

    require.NoError(t, svc.Swap(ctx, a.ID, reversed.ID))
    swapped, err := svc.Get(ctx, a.ID)
    require.NoError(t, err)
    require.Equal(t, []int{91, 74, 47, 19}, swapped.Values)

    list := svc.List(ctx)
    require.Len(t, list, 3)
    require.Equal(t, []int{19, 47, 74, 91}, list[0].Values)
    require.Equal(t, []int{19, 47, 74, 91, 100}, list[1].Values)
    require.Equal(t, []int{91, 74, 47, 19}, list[2].Values)

    require.NoError(t, svc.Delete(ctx, cloned.ID))
    require.Len(t, svc.List(ctx), 2)
}

func TestServiceProvider_Persist(t *testing.T) {
    ctx := context.Background()
    dir, svc := setupSuite(t)

    a, err := svc.Create(ctx, []int{1, 2, 3})
    require.NoError(t, err)
    b, err := svc.Create(ctx, nil)
    require.NoError(t, err)

    require.NoError(t, svc.Persist())
    _, err = os.Stat(filepath.Join(dir, storeFile))
    require.NoError(t, err)

    // read newly persisted stacks into a new service
    svc2 := NewService(dir)
    require.NoError(t, svc2.Open())

    for _, expected := range []*Model{a, b} {
        got, err := svc2.Get(ctx, expected.ID)
        require.NoError(t, err)
        if diff := cmp.Diff(expected, got); diff != "" {
            t.Errorf("model does not match (-expected, +received):\n%s", diff)
        }
    }
}

func TestServiceProvider_OpenCorrupt(t *testing.T) {
    dir := t.TempDir()
    require.NoError(t, os.WriteFile(filepath.Join(dir, storeFile), []byte("{"), 0644))
    require.Error(t, NewService(dir).Open())
}
