package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

var (
	ErrTransport = errors.New("transport failure")
	ErrDecode    = errors.New("malformed response")
)

// APIError is a response the service answered but did not accept.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

type createRequest struct {
	DriverID int    `json:"driverId"`
	Slots    []Slot `json:"slots"`
}

type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *APIClient) endpoint(query url.Values) string {
	u := c.baseURL + "/availability"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends req and returns the status code and the raw body.
func (c *APIClient) do(req *http.Request) (int, []byte, error) {
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}
	return res.StatusCode, body, nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// parseResult inspects a mutation response. Bodies that are not JSON
// are treated as an empty object.
func parseResult(body []byte) (ok gjson.Result, errMsg string) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, ""
	}
	return gjson.GetBytes(body, "ok"), gjson.GetBytes(body, "error").String()
}

// fetches every saved slot from the service
func (c *APIClient) ListSlots(ctx context.Context) ([]Slot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(nil), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	code, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(code) {
		_, msg := parseResult(body)
		return nil, &APIError{StatusCode: code, Message: msg}
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: list body is not JSON", ErrDecode)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return []Slot{}, nil
	}

	arr := parsed.Array()
	slots := make([]Slot, 0, len(arr))
	for _, v := range arr {
		slots = append(slots, Slot{
			DayOfWeek: int(v.Get("dayOfWeek").Int()),
			StartTime: v.Get("startTime").String(),
			EndTime:   v.Get("endTime").String(),
		})
	}
	return slots, nil
}

// submits a batch of slots in a single request; the service either takes
// all of them or none
func (c *APIClient) CreateSlots(ctx context.Context, slots []Slot) error {
	reqBody, err := json.Marshal(createRequest{DriverID: DriverID, Slots: slots})
	if err != nil {
		return fmt.Errorf("error encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(nil), bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	code, body, err := c.do(req)
	if err != nil {
		return err
	}

	ok, msg := parseResult(body)
	if !isSuccess(code) || ok.Type == gjson.False {
		return &APIError{StatusCode: code, Message: msg}
	}
	return nil
}

// removes one saved slot, identified by its day and times. Unlike create,
// success needs an explicit ok:true in the body.
func (c *APIClient) DeleteSlot(ctx context.Context, slot Slot) error {
	query := url.Values{}
	query.Set("dayOfWeek", strconv.Itoa(slot.DayOfWeek))
	query.Set("startTime", slot.StartTime)
	query.Set("endTime", slot.EndTime)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint(query), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	code, body, err := c.do(req)
	if err != nil {
		return err
	}

	ok, msg := parseResult(body)
	if !isSuccess(code) || ok.Type != gjson.True {
		return &APIError{StatusCode: code, Message: msg}
	}
	return nil
}
