// Package metrics records app memory metrics from a running automation
// session into a CSV file.
//
// The recorder reads "FEATURE STAGE" lines from its input, polls the
// session's performance-data endpoint for each, and appends one CSV row
// per reading. Per-line failures are logged and skipped; the run keeps
// going until the input is exhausted.
package metrics

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/starford/featlint/internal/apperr"
)

// header is the fixed CSV column set: feature and stage, then the
// memoryinfo keys in sorted order.
var header = []string{
	"feature", "stage",
	"dalvikPrivateDirty", "dalvikPss", "dalvikRss",
	"eglPrivateDirty", "eglPss",
	"glPrivateDirty", "glPss",
	"nativeHeapAllocatedSize", "nativeHeapSize",
	"nativePrivateDirty", "nativePss", "nativeRss",
	"totalPrivateDirty", "totalPss", "totalRss",
}

// Recorder polls an automation session API for memory metrics.
type Recorder struct {
	client      *http.Client
	baseURL     string
	packageName string
	logger      *slog.Logger
}

// New creates a recorder against the session API at baseURL for the app
// identified by packageName.
func New(baseURL, packageName string, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		client:      &http.Client{},
		baseURL:     strings.TrimRight(baseURL, "/"),
		packageName: packageName,
		logger:      logger,
	}
}

// Run discovers the active session, then records one CSV row per input
// line into outPath. It refuses to overwrite an existing file.
func (r *Recorder) Run(ctx context.Context, in io.Reader, outPath string) error {
	if _, err := os.Stat(outPath); err == nil {
		return fmt.Errorf("metrics: output file %s: %w", outPath, apperr.ErrAlreadyExists)
	}

	sessionID, err := r.activeSession(ctx)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("metrics: create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("metrics: write header: %w", err)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Text()
		row, err := r.sample(ctx, sessionID, line)
		if err != nil {
			r.logger.Error("metrics: sample failed",
				slog.String("line", line),
				slog.String("error", err.Error()))
			continue
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("metrics: write row: %w", err)
		}
		w.Flush()
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("metrics: read input: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("metrics: flush: %w", err)
	}
	return ctx.Err()
}

// activeSession returns the id of the first session reported by the API.
func (r *Recorder) activeSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/sessions", nil)
	if err != nil {
		return "", fmt.Errorf("metrics: build sessions request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("metrics: fetch sessions: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Value []struct {
			ID string `json:"id"`
		} `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("metrics: decode sessions response: %w", err)
	}
	if len(payload.Value) == 0 {
		return "", fmt.Errorf("metrics: %w", apperr.ErrNoSession)
	}
	if payload.Value[0].ID == "" {
		return "", fmt.Errorf("metrics: session response has no id")
	}
	return payload.Value[0].ID, nil
}

// sample validates one input line and polls the performance endpoint,
// returning the full CSV row.
func (r *Recorder) sample(ctx context.Context, sessionID, line string) ([]string, error) {
	feature, stage, ok := strings.Cut(line, " ")
	if !ok {
		return nil, fmt.Errorf("cannot split input into feature and stage")
	}
	if strings.ContainsRune(stage, ' ') {
		return nil, fmt.Errorf("input must be of the format FEATURE STAGE")
	}
	if stage != "start" && stage != "stop" {
		return nil, fmt.Errorf("stage must be either 'start' or 'stop'")
	}

	vals, err := r.memoryInfo(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return append([]string{feature, stage}, vals...), nil
}

// memoryInfo polls getPerformanceData and returns the metric values in
// sorted-key order.
func (r *Recorder) memoryInfo(ctx context.Context, sessionID string) ([]string, error) {
	body, err := json.Marshal(map[string]string{
		"packageName": r.packageName,
		"dataType":    "memoryinfo",
	})
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	url := fmt.Sprintf("%s/session/%s/appium/getPerformanceData", r.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch performance data: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(payload.Value) == 0 {
		return nil, fmt.Errorf("response has no value")
	}

	// The endpoint reports errors as {"value":{"error":{"error":"..."}}}.
	var apiErr struct {
		Error *struct {
			Error string `json:"error"`
		} `json:"error"`
	}
	if err := json.Unmarshal(payload.Value, &apiErr); err == nil && apiErr.Error != nil {
		return nil, fmt.Errorf("session api: %s", apiErr.Error.Error)
	}

	// Success shape: [[key...],[value...]].
	var arrays [][]json.RawMessage
	if err := json.Unmarshal(payload.Value, &arrays); err != nil {
		return nil, fmt.Errorf("decode performance arrays: %w", err)
	}
	if len(arrays) < 2 {
		return nil, fmt.Errorf("expected key and value arrays, got %d", len(arrays))
	}

	keys := decodeStrings(arrays[0])
	vals := decodeStrings(arrays[1])
	if len(vals) < len(keys) {
		return nil, fmt.Errorf("got %d values for %d keys", len(vals), len(keys))
	}

	byKey := make(map[string]string, len(keys))
	for i, k := range keys {
		byKey[k] = vals[i]
	}
	sorted := make([]string, 0, len(byKey))
	for k := range byKey {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	out := make([]string, 0, len(sorted))
	for _, k := range sorted {
		out = append(out, byKey[k])
	}
	return out, nil
}

// decodeStrings converts a JSON array of scalars to strings. Null becomes
// the empty string; numbers keep their literal form.
func decodeStrings(raw []json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		var s string
		if err := json.Unmarshal(m, &s); err == nil {
			out = append(out, s)
			continue
		}
		trimmed := strings.TrimSpace(string(m))
		if trimmed == "null" {
			out = append(out, "")
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
