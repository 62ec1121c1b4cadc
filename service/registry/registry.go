package registry

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "github.com/aleph-zero/flutterstack/engine/stack"
    "github.com/aleph-zero/flutterstack/telemetry"
    log "github.com/go-chi/httplog/v2"
    "github.com/google/uuid"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/trace"
    "maps"
    "os"
    "path/filepath"
    "slices"
    "strings"
    "sync"
)

const (
    storeFile = "stacks.json"

    // DefaultMaxLength bounds the length of any registered stack.
    DefaultMaxLength = 1 << 24
)

type Service interface {
    Open() error
    Persist() error
    Create(ctx context.Context, values []int) (*Model, error)
    Get(ctx context.Context, id string) (*Model, error)
    List(ctx context.Context) []*Model
    Delete(ctx context.Context, id string) error
    Push(ctx context.Context, id string, values ...int) (*Model, error)
    Pop(ctx context.Context, id string) (int, error)
    Resize(ctx context.Context, id string, n int) (*Model, error)
    Assign(ctx context.Context, id string, n, value int) (*Model, error)
    Clone(ctx context.Context, id string) (*Model, error)
    Reverse(ctx context.Context, id string) (*Model, error)
    Swap(ctx context.Context, a, b string) error
    Compare(ctx context.Context, a, b string) (*Comparison, error)
}

type ServiceProvider struct {
    lock      sync.RWMutex
    directory string
    maxLength int
    stacks    map[string]*stack.Stack
}

func NewService(directory string) Service {
    return NewServiceWithConfig(NewConfig(WithDirectory(directory)))
}

func NewServiceWithConfig(config *Config) Service {
    maxLength := config.MaxLength
    if maxLength <= 0 {
        maxLength = DefaultMaxLength
    }
    return &ServiceProvider{
        directory: config.Directory,
        maxLength: maxLength,
        stacks:    make(map[string]*stack.Stack),
    }
}

/* *** Persistence *** */

type filestore struct {
    Stacks map[string][]int `json:"stacks"`
}

// Open loads previously persisted stacks. A missing store file is not an error.
func (s *ServiceProvider) Open() error {
    s.lock.Lock()
    defer s.lock.Unlock()

    data, err := os.ReadFile(filepath.Join(s.directory, storeFile))
    if errors.Is(err, os.ErrNotExist) {
        return nil
    }
    if err != nil {
        return fmt.Errorf("opening filestore: %w", err)
    }

    var fs filestore
    if err = json.Unmarshal(data, &fs); err != nil {
        return fmt.Errorf("unmarshalling filestore: %w", err)
    }

    for id, values := range fs.Stacks {
        s.stacks[id] = stack.FromSlice(values)
    }
    return nil
}

func (s *ServiceProvider) Persist() error {
    s.lock.RLock()
    defer s.lock.RUnlock()
    return s.persistLocked()
}

// persistLocked writes every stack to the store file. The caller must hold the lock.
// The file is replaced by rename so a crash mid-write leaves the previous store intact.
func (s *ServiceProvider) persistLocked() error {
    fs := filestore{Stacks: make(map[string][]int, len(s.stacks))}
    for id, st := range s.stacks {
        fs.Stacks[id] = st.Slice()
    }

    data, err := json.MarshalIndent(fs, "", "  ")
    if err != nil {
        return fmt.Errorf("marshalling filestore: %w", err)
    }

    if err = os.MkdirAll(s.directory, 0750); err != nil {
        return fmt.Errorf("creating filestore directory: %w", err)
    }

    tmp, err := os.CreateTemp(s.directory, storeFile+".*")
    if err != nil {
        return fmt.Errorf("persisting filestore: %w", err)
    }
    defer os.Remove(tmp.Name())

    if _, err = tmp.Write(data); err != nil {
        tmp.Close()
        return fmt.Errorf("persisting filestore: %w", err)
    }
    if err = tmp.Close(); err != nil {
        return fmt.Errorf("persisting filestore: %w", err)
    }
    if err = os.Rename(tmp.Name(), filepath.Join(s.directory, storeFile)); err != nil {
        return fmt.Errorf("persisting filestore: %w", err)
    }
    return nil
}

/* *** Operations *** */

func (s *ServiceProvider) Create(ctx context.Context, values []int) (*Model, error) {
    ctx, span := telemetry.StartSpan(ctx, "registry.Create", trace.WithAttributes(attribute.Int("values", len(values))))
    defer span.End()

    if err := s.checkLength(len(values)); err != nil {
        return nil, err
    }

    id := uuid.NewString()
    st := stack.FromSlice(values)

    s.lock.Lock()
    defer s.lock.Unlock()
    s.stacks[id] = st
    if err := s.persistLocked(); err != nil {
        delete(s.stacks, id)
        return nil, err
    }

    log.LogEntry(ctx).Info("Created stack", "id", id, "length", st.Len())
    telemetry.RecordPush(ctx, len(values))
    return NewModel(id, st), nil
}

func (s *ServiceProvider) Get(ctx context.Context, id string) (*Model, error) {
    _, span := telemetry.StartSpan(ctx, "registry.Get", trace.WithAttributes(attribute.String("stack", id)))
    defer span.End()

    s.lock.RLock()
    defer s.lock.RUnlock()

    st, err := s.lookup(id)
    if err != nil {
        return nil, err
    }
    return NewModel(id, st), nil
}

func (s *ServiceProvider) List(ctx context.Context) []*Model {
    _, span := telemetry.StartSpan(ctx, "registry.List")
    defer span.End()

    s.lock.RLock()
    defer s.lock.RUnlock()

    ids := slices.Collect(maps.Keys(s.stacks))
    slices.SortFunc(ids, func(a, b string) int {
        if c := stack.Compare(s.stacks[a], s.stacks[b]); c != 0 {
            return c
        }
        return strings.Compare(a, b)
    })

    models := make([]*Model, 0, len(ids))
    for _, id := range ids {
        models = append(models, NewModel(id, s.stacks[id]))
    }
    span.SetAttributes(attribute.Int("stacks", len(models)))
    return models
}

func (s *ServiceProvider) Delete(ctx context.Context, id string) error {
    ctx, span := telemetry.StartSpan(ctx, "registry.Delete", trace.WithAttributes(attribute.String("stack", id)))
    defer span.End()

    s.lock.Lock()
    defer s.lock.Unlock()

    st, err := s.lookup(id)
    if err != nil {
        return err
    }
    delete(s.stacks, id)
    if err = s.persistLocked(); err != nil {
        s.stacks[id] = st
        return err
    }
    log.LogEntry(ctx).Info("Deleted stack", "id", id)
    return nil
}

func (s *ServiceProvider) Push(ctx context.Context, id string, values ...int) (*Model, error) {
    ctx, span := telemetry.StartSpan(ctx, "registry.Push",
        trace.WithAttributes(attribute.String("stack", id), attribute.Int("values", len(values))))
    defer span.End()

    s.lock.Lock()
    defer s.lock.Unlock()

    st, err := s.lookup(id)
    if err != nil {
        return nil, err
    }
    if err = s.checkLength(st.Len() + len(values)); err != nil {
        return nil, err
    }
    for _, v := range values {
        st.Push(v)
    }
    if err = s.persistLocked(); err != nil {
        st.Resize(st.Len() - len(values))
        return nil, err
    }
    telemetry.RecordPush(ctx, len(values))
    return NewModel(id, st), nil
}

func (s *ServiceProvider) Pop(ctx context.Context, id string) (int, error) {
    ctx, span := telemetry.StartSpan(ctx, "registry.Pop", trace.WithAttributes(attribute.String("stack", id)))
    defer span.End()

    s.lock.Lock()
    defer s.lock.Unlock()

    st, err := s.lookup(id)
    if err != nil {
        return 0, err
    }
    v, ok := st.TryPop()
    if !ok {
        log.LogEntry(ctx).Warn("Pop from empty stack", "id", id)
        return 0, Error{
            ErrorCode: EmptyStack,
            Message:   fmt.Sprintf("stack %s is empty", id),
            Err:       stack.ErrEmpty,
        }
    }
    if err = s.persistLocked(); err != nil {
        st.Push(v)
        return 0, err
    }
    telemetry.RecordPop(ctx)
    return v, nil
}

func (s *ServiceProvider) Resize(ctx context.Context, id string, n int) (*Model, error) {
    if err := s.checkLength(n); err != nil {
        return nil, err
    }
    return s.mutate(ctx, "registry.Resize", id, func(st *stack.Stack) { st.Resize(n) })
}

func (s *ServiceProvider) Assign(ctx context.Context, id string, n, value int) (*Model, error) {
    if err := s.checkLength(n); err != nil {
        return nil, err
    }
    return s.mutate(ctx, "registry.Assign", id, func(st *stack.Stack) { st.Assign(n, value) })
}

func (s *ServiceProvider) Clone(ctx context.Context, id string) (*Model, error) {
    return s.derive(ctx, "registry.Clone", id, func(st *stack.Stack) *stack.Stack {
        return st.Clone()
    })
}

// Reverse registers a new stack built from the reverse traversal of id.
func (s *ServiceProvider) Reverse(ctx context.Context, id string) (*Model, error) {
    return s.derive(ctx, "registry.Reverse", id, func(st *stack.Stack) *stack.Stack {
        return stack.FromRange(st.RBegin(), st.REnd())
    })
}

// Swap exchanges the contents registered under a and b.
func (s *ServiceProvider) Swap(ctx context.Context, a, b string) error {
    ctx, span := telemetry.StartSpan(ctx, "registry.Swap",
        trace.WithAttributes(attribute.String("stack", a), attribute.String("other", b)))
    defer span.End()

    s.lock.Lock()
    defer s.lock.Unlock()

    sa, err := s.lookup(a)
    if err != nil {
        return err
    }
    sb, err := s.lookup(b)
    if err != nil {
        return err
    }
    sa.Swap(sb)
    if err = s.persistLocked(); err != nil {
        sa.Swap(sb)
        return err
    }
    log.LogEntry(ctx).Info("Swapped stacks", "id", a, "other", b)
    return nil
}

func (s *ServiceProvider) Compare(ctx context.Context, a, b string) (*Comparison, error) {
    _, span := telemetry.StartSpan(ctx, "registry.Compare",
        trace.WithAttributes(attribute.String("stack", a), attribute.String("other", b)))
    defer span.End()

    s.lock.RLock()
    defer s.lock.RUnlock()

    sa, err := s.lookup(a)
    if err != nil {
        return nil, err
    }
    sb, err := s.lookup(b)
    if err != nil {
        return nil, err
    }
    return &Comparison{Compare: stack.Compare(sa, sb), Equal: stack.IsEqual(sa, sb)}, nil
}

func (s *ServiceProvider) mutate(ctx context.Context, name, id string, fn func(*stack.Stack)) (*Model, error) {
    _, span := telemetry.StartSpan(ctx, name, trace.WithAttributes(attribute.String("stack", id)))
    defer span.End()

    s.lock.Lock()
    defer s.lock.Unlock()

    st, err := s.lookup(id)
    if err != nil {
        return nil, err
    }
    previous := st.Clone()
    fn(st)
    if err = s.persistLocked(); err != nil {
        st.CopyFrom(previous)
        return nil, err
    }
    return NewModel(id, st), nil
}

func (s *ServiceProvider) derive(ctx context.Context, name, id string, fn func(*stack.Stack) *stack.Stack) (*Model, error) {
    ctx, span := telemetry.StartSpan(ctx, name, trace.WithAttributes(attribute.String("stack", id)))
    defer span.End()

    s.lock.Lock()
    defer s.lock.Unlock()

    st, err := s.lookup(id)
    if err != nil {
        return nil, err
    }
    derived := fn(st)
    newId := uuid.NewString()
    s.stacks[newId] = derived
    if err = s.persistLocked(); err != nil {
        delete(s.stacks, newId)
        return nil, err
    }
    log.LogEntry(ctx).Info("Derived stack", "source", id, "id", newId)
    return NewModel(newId, derived), nil
}

func (s *ServiceProvider) checkLength(n int) error {
    if n < 0 || n > s.maxLength {
        return Error{
            ErrorCode: InvalidArgument,
            Message:   fmt.Sprintf("invalid length %d: must be between 0 and %d", n, s.maxLength),
        }
    }
    return nil
}

// lookup expects the caller to hold the lock.
func (s *ServiceProvider) lookup(id string) (*stack.Stack, error) {
    st, ok := s.stacks[id]
    if !ok {
        return nil, Error{
            ErrorCode: NoSuchStack,
            Message:   fmt.Sprintf("stack %s does not exist", id),
        }
    }
    return st, nil
}

/* *** Models *** */

type Model struct {
    ID       string `json:"id"`
    Values   []int  `json:"values"`
    Length   int    `json:"length"`
    Rendered string `json:"rendered"`
}

func NewModel(id string, st *stack.Stack) *Model {
    return &Model{
        ID:       id,
        Values:   st.Slice(),
        Length:   st.Len(),
        Rendered: st.String(),
    }
}

type Comparison struct {
    Compare int  `json:"compare"`
    Equal   bool `json:"equal"`
}

/* *** Registry Config *** */

type Config struct {
    Directory string
    MaxLength int
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
    cfg := &Config{MaxLength: DefaultMaxLength}
    for _, option := range options {
        option(cfg)
    }
    return cfg
}

func WithDirectory(directory string) Option {
    return func(config *Config) {
        config.Directory = directory
    }
}

func WithMaxLength(maxLength int) Option {
    return func(config *Config) {
        config.MaxLength = maxLength
    }
}

/* *** Errors *** */

type ErrorCode int

const (
    _ ErrorCode = iota
    NoSuchStack
    EmptyStack
    InvalidArgument
)

type Error struct {
    ErrorCode ErrorCode
    Message   string
    Err       error
}

func (e Error) Error() string {
    return e.Message
}

func (e Error) Unwrap() error {
    return e.Err
}

func (e Error) Is(target error) bool {
    if other, ok := target.(Error); ok {
        ignoreErrorCode := other.ErrorCode == 0
        ignoreMessage := other.Message == ""
        matchErrorCode := other.ErrorCode == e.ErrorCode
        matchMessage := other.Message == e.Message

        return matchMessage && matchErrorCode || matchMessage && ignoreErrorCode || ignoreMessage && matchErrorCode
    }
    return false
}
