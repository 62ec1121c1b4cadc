package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/aleph-zero/flutterstack/api"
	"github.com/aleph-zero/flutterstack/service/registry"
	"github.com/aleph-zero/flutterstack/telemetry"
	"github.com/chzyer/readline"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	serviceName       = "flutterstack-cli"
	serviceVersion    = "0.0.1"
	readlineConfigDir = ".config/flutterstack"
)

var collectorURL = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

type Config struct {
	RemoteAddr string
	RemotePort int
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func WithRemoteAddr(addr string) Option {
	return func(cfg *Config) {
		cfg.RemoteAddr = addr
	}
}

func WithRemotePort(port uint16) Option {
	return func(cfg *Config) {
		cfg.RemotePort = int(port)
	}
}

func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.RemoteAddr, c.RemotePort)
}

func Bootstrap(config *Config) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rl, err := setupReadline()
	if err != nil {
		slog.Error("Error setting up readline config", "error", err)
		return
	}
	defer rl.Close()

	if shutdown, err := telemetry.New(serviceName, serviceVersion, collectorURL); err == nil {
		defer shutdown()
	}

	client := New(config.BaseURL(), &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Second * 30,
	})

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		out, err := client.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(rl.Stderr(), "error: %s\n", err)
			continue
		}
		fmt.Fprintln(rl.Stdout(), out)
	}
}

func setupReadline() (rl *readline.Instance, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(home, readlineConfigDir)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		return nil, err
	}

	return readline.NewEx(&readline.Config{
		Prompt:            "\033[31mflutterstack> \033[0m ",
		HistoryFile:       filepath.Join(dir, "flutterstack.history"),
		AutoComplete:      completer,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
}

var completer = readline.NewPrefixCompleter(
	readline.PcItem("new"),
	readline.PcItem("list"),
	readline.PcItem("show"),
	readline.PcItem("push"),
	readline.PcItem("pop"),
	readline.PcItem("resize"),
	readline.PcItem("assign"),
	readline.PcItem("clone"),
	readline.PcItem("reverse"),
	readline.PcItem("swap"),
	readline.PcItem("compare"),
	readline.PcItem("delete"),
	readline.PcItem("exit"),
)

/* *** Stack Client *** */

// Client talks to the /stacks endpoints of a flutterstack server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

// Execute runs one REPL command and returns its printable result.
func (c *Client) Execute(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "new":
		values, err := parseInts(args)
		if err != nil {
			return "", err
		}
		return formatModel(c.Create(ctx, values))
	case "list":
		models, err := c.List(ctx)
		if err != nil {
			return "", err
		}
		lines := make([]string, 0, len(models))
		for _, m := range models {
			lines = append(lines, fmt.Sprintf("%s %s", m.ID, m.Rendered))
		}
		return strings.Join(lines, "\n"), nil
	case "show":
		if err := expectArgs(cmd, args, 1); err != nil {
			return "", err
		}
		return formatModel(c.Get(ctx, args[0]))
	case "push":
		if len(args) < 1 {
			return "", fmt.Errorf("usage: push <id> <value>...")
		}
		values, err := parseInts(args[1:])
		if err != nil {
			return "", err
		}
		return formatModel(c.Push(ctx, args[0], values...))
	case "pop":
		if err := expectArgs(cmd, args, 1); err != nil {
			return "", err
		}
		v, err := c.Pop(ctx, args[0])
		if err != nil {
			return "", err
		}
		return strconv.Itoa(v), nil
	case "resize":
		if err := expectArgs(cmd, args, 2); err != nil {
			return "", err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return "", fmt.Errorf("invalid length %q: %w", args[1], err)
		}
		return formatModel(c.Resize(ctx, args[0], n))
	case "assign":
		if err := expectArgs(cmd, args, 3); err != nil {
			return "", err
		}
		nv, err := parseInts(args[1:])
		if err != nil {
			return "", err
		}
		return formatModel(c.Assign(ctx, args[0], nv[0], nv[1]))
	case "clone":
		if err := expectArgs(cmd, args, 1); err != nil {
			return "", err
		}
		return formatModel(c.Clone(ctx, args[0]))
	case "reverse":
		if err := expectArgs(cmd, args, 1); err != nil {
			return "", err
		}
		return formatModel(c.Reverse(ctx, args[0]))
	case "swap":
		if err := expectArgs(cmd, args, 2); err != nil {
			return "", err
		}
		if err := c.Swap(ctx, args[0], args[1]); err != nil {
			return "", err
		}
		return "ok", nil
	case "compare":
		if err := expectArgs(cmd, args, 2); err != nil {
			return "", err
		}
		cmp, err := c.Compare(ctx, args[0], args[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("compare=%d equal=%t", cmp.Compare, cmp.Equal), nil
	case "delete":
		if err := expectArgs(cmd, args, 1); err != nil {
			return "", err
		}
		if err := c.Delete(ctx, args[0]); err != nil {
			return "", err
		}
		return "ok", nil
	default:
		return "", fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *Client) Create(ctx context.Context, values []int) (*registry.Model, error) {
	if values == nil {
		values = []int{}
	}
	var m registry.Model
	if err := c.do(ctx, http.MethodPut, "/stacks", values, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Get(ctx context.Context, id string) (*registry.Model, error) {
	var m registry.Model
	if err := c.do(ctx, http.MethodGet, stackPath(id, ""), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) List(ctx context.Context) ([]*registry.Model, error) {
	var models []*registry.Model
	if err := c.do(ctx, http.MethodGet, "/stacks", nil, &models); err != nil {
		return nil, err
	}
	return models, nil
}

func (c *Client) Push(ctx context.Context, id string, values ...int) (*registry.Model, error) {
	if values == nil {
		values = []int{}
	}
	var m registry.Model
	if err := c.do(ctx, http.MethodPost, stackPath(id, "/push"), values, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Pop(ctx context.Context, id string) (int, error) {
	var p api.PopResponse
	if err := c.do(ctx, http.MethodPost, stackPath(id, "/pop"), nil, &p); err != nil {
		return 0, err
	}
	return p.Value, nil
}

func (c *Client) Resize(ctx context.Context, id string, n int) (*registry.Model, error) {
	var m registry.Model
	path := stackPath(id, "/resize") + "?" + url.Values{"n": {strconv.Itoa(n)}}.Encode()
	if err := c.do(ctx, http.MethodPost, path, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Assign(ctx context.Context, id string, n, value int) (*registry.Model, error) {
	var m registry.Model
	query := url.Values{"n": {strconv.Itoa(n)}, "value": {strconv.Itoa(value)}}
	if err := c.do(ctx, http.MethodPost, stackPath(id, "/assign")+"?"+query.Encode(), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Clone(ctx context.Context, id string) (*registry.Model, error) {
	var m registry.Model
	if err := c.do(ctx, http.MethodPost, stackPath(id, "/clone"), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Reverse(ctx context.Context, id string) (*registry.Model, error) {
	var m registry.Model
	if err := c.do(ctx, http.MethodPost, stackPath(id, "/reverse"), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) Swap(ctx context.Context, a, b string) error {
	return c.do(ctx, http.MethodPost, stackPath(a, "/swap/"+url.PathEscape(b)), nil, nil)
}

func (c *Client) Compare(ctx context.Context, a, b string) (*registry.Comparison, error) {
	var cmp registry.Comparison
	if err := c.do(ctx, http.MethodGet, stackPath(a, "/compare/"+url.PathEscape(b)), nil, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, stackPath(id, ""), nil, nil)
}

// RemoteError carries the error body returned by the server.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	tr := otel.Tracer(serviceName)
	traceCtx, span := tr.Start(ctx, "client."+strings.ToLower(method), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshalling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(traceCtx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var e api.ErrResponse
		if err := json.NewDecoder(res.Body).Decode(&e); err != nil || e.ErrorText == "" {
			return &RemoteError{StatusCode: res.StatusCode, Message: res.Status}
		}
		return &RemoteError{StatusCode: res.StatusCode, Message: e.ErrorText}
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func stackPath(id, suffix string) string {
	return "/stacks/" + url.PathEscape(id) + suffix
}

func expectArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", cmd, n, len(args))
	}
	return nil
}

func parseInts(args []string) ([]int, error) {
	values := make([]int, 0, len(args))
	for _, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", a, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func formatModel(m *registry.Model, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s", m.ID, m.Rendered), nil
}
