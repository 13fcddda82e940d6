package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/repflow/internal/models"
	"github.com/claude/repflow/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the RepFlow REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// errNotFound marks a 404 from the API so callers can map it to "no data".
var errNotFound = fmt.Errorf("not found")

// bucketToAgg maps volume bucket values to REST API agg parameter values.
func bucketToAgg(bucket string) string {
	switch bucket {
	case "day":
		return "daily"
	case "week":
		return "weekly"
	case "month":
		return "monthly"
	default:
		return "weekly"
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) QueryExerciseHistory(ctx context.Context, _ int, exercise string, start, end time.Time, limit int) ([]models.ExerciseHistoryRow, error) {
	params := timeParams(start, end)
	params.Set("exercise", exercise)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/history", params)
	if err != nil {
		return nil, err
	}

	var rows []models.ExerciseHistoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) GetLastPerformance(ctx context.Context, _ int, exercise string) (*models.ExerciseHistoryRow, error) {
	params := url.Values{}
	params.Set("exercise", exercise)

	body, err := c.get(ctx, "/api/v1/history/last", params)
	if err != nil {
		if errors.Is(err, errNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var row models.ExerciseHistoryRow
	if err := json.Unmarshal(body, &row); err != nil {
		return nil, fmt.Errorf("httpclient: decode last performance: %w", err)
	}
	return &row, nil
}

func (c *HTTPClient) QueryPersonalRecords(ctx context.Context, _ int) ([]models.PersonalRecordRow, error) {
	body, err := c.get(ctx, "/api/v1/records", nil)
	if err != nil {
		return nil, err
	}

	var records []models.PersonalRecordRow
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) QuerySessionLogs(ctx context.Context, _ int, start, end time.Time) ([]models.SessionLogRow, error) {
	body, err := c.get(ctx, "/api/v1/logs", timeParams(start, end))
	if err != nil {
		return nil, err
	}

	var logs []models.SessionLogRow
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("httpclient: decode session logs: %w", err)
	}
	return logs, nil
}

func (c *HTTPClient) GetSessionLog(ctx context.Context, sessionID uuid.UUID, _ int) (*storage.SessionDetail, error) {
	body, err := c.get(ctx, "/api/v1/logs/"+sessionID.String(), nil)
	if err != nil {
		return nil, err
	}

	var detail storage.SessionDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("httpclient: decode session detail: %w", err)
	}
	return &detail, nil
}

func (c *HTTPClient) GetTrainingVolume(ctx context.Context, start, end time.Time, bucket string, _ int) ([]storage.VolumePeriod, error) {
	params := timeParams(start, end)
	params.Set("agg", bucketToAgg(bucket))

	body, err := c.get(ctx, "/api/v1/volume", params)
	if err != nil {
		return nil, err
	}

	var periods []storage.VolumePeriod
	if err := json.Unmarshal(body, &periods); err != nil {
		return nil, fmt.Errorf("httpclient: decode volume: %w", err)
	}
	return periods, nil
}

func (c *HTTPClient) GetTrackedExercises(ctx context.Context) ([]storage.TrackedExercise, error) {
	body, err := c.get(ctx, "/api/v1/tracked-exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []storage.TrackedExercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode tracked exercises: %w", err)
	}
	return exercises, nil
}
