// Package insights fetches the product metrics snapshot used by weekly memo
// generation. Snapshot retrieval is best-effort: callers substitute an
// unavailability marker on any error instead of failing the job.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/slushhq/agent-ops/config"
	"github.com/slushhq/agent-ops/internal/core"
)

const (
	snapshotPath = "/internal/insights/snapshot"
	tokenHeader  = "X-Internal-Agent-Token"
	rangeParam   = "last_7_days"
)

// Client fetches and formats the business snapshot from the main application.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// ClientOptions groups dependencies for NewClient.
type ClientOptions struct {
	Config config.InsightsConfig
	Client *http.Client // Optional
	Logger *slog.Logger // Optional
}

// NewClient builds an insights client from configuration.
func NewClient(opts ClientOptions) (*Client, error) {
	cfg := opts.Config
	if !cfg.Configured() {
		return nil, errors.New("insights base url and token are required")
	}

	hc := opts.Client
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  hc,
		logger:  logger.With("component", "insights"),
	}, nil
}

var _ core.SnapshotFetcher = (*Client)(nil)

// FetchSnapshot retrieves the snapshot and renders it as prompt-ready text.
func (c *Client) FetchSnapshot(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+snapshotPath, nil)
	if err != nil {
		return "", fmt.Errorf("build snapshot request: %w", err)
	}
	q := req.URL.Query()
	q.Set("range", rangeParam)
	req.URL.RawQuery = q.Encode()
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch snapshot: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", errors.New("snapshot endpoint rejected the internal agent token")
	case resp.StatusCode == http.StatusNotFound:
		return "", errors.New("snapshot endpoint not found")
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("snapshot endpoint returned status %d", resp.StatusCode)
	}

	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode snapshot: %w", err)
	}

	formatted := formatSnapshot(data)
	c.logger.InfoContext(ctx, "snapshot fetched", "chars", len(formatted))
	return formatted, nil
}

// Sections of the snapshot document, extracted with JMESPath. Anything the
// expressions do not match is appended raw so no data silently disappears.
var snapshotSections = []struct {
	Title string
	Expr  string
}{
	{Title: "Key Metrics", Expr: "metrics"},
	{Title: "Funnel Performance", Expr: "funnel"},
}

func formatSnapshot(data any) string {
	var sb strings.Builder
	sb.WriteString("=== BUSINESS DATA SNAPSHOT ===\n")

	claimed := map[string]bool{}
	for _, section := range snapshotSections {
		value, err := jmespath.Search(section.Expr, data)
		if err != nil || value == nil {
			continue
		}
		claimed[section.Expr] = true
		sb.WriteString("\n## " + section.Title + "\n")
		writeValue(&sb, value, 0)
	}

	// Remaining top-level fields.
	if obj, ok := data.(map[string]any); ok {
		for _, key := range sortedKeys(obj) {
			if claimed[key] {
				continue
			}
			sb.WriteString("\n## " + titleCase(key) + "\n")
			writeValue(&sb, obj[key], 0)
		}
	}
	return sb.String()
}

const maxRawValueChars = 500

func writeValue(sb *strings.Builder, value any, depth int) {
	switch v := value.(type) {
	case map[string]any:
		for _, key := range sortedKeys(v) {
			child := v[key]
			if nested, ok := child.(map[string]any); ok && depth == 0 {
				sb.WriteString("### " + titleCase(key) + "\n")
				writeValue(sb, nested, depth+1)
				continue
			}
			sb.WriteString("- " + key + ": " + scalarString(child) + "\n")
		}
	case []any:
		for _, item := range v {
			sb.WriteString("- " + scalarString(item) + "\n")
		}
	default:
		sb.WriteString(scalarString(v) + "\n")
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return "null"
	case map[string]any, []any:
		raw, err := json.Marshal(s)
		if err != nil {
			return fmt.Sprintf("%v", s)
		}
		out := string(raw)
		if len(out) > maxRawValueChars {
			out = out[:maxRawValueChars] + "..."
		}
		return out
	default:
		return fmt.Sprintf("%v", s)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
