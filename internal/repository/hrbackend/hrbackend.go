// Package hrbackend talks to the HR backend that owns LineUser records,
// active employees, daily scan summaries and weekly work hours.
package hrbackend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"manpower/backend/foundation/web"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	lineUsersPath      = "/api/LineUsers"
	employeeHoursPath  = "/api/LineUsers/GetEmployeeHours"
	employeeActivePath = "/api/LineNotify/EmployeeActive"
	scanSummaryPath    = "/api/LineNotify/ScanSummary"

	lineUsersKey      = "line_users"
	employeeActiveKey = "employee_active"
	employeeHoursKey  = "employee_hours"

	maxBodySize = 16 << 20
)

// Cache is satisfied by redisdb.Cache.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	cache   Cache
	log     *zap.Logger
}

// NewClient returns a client for cfg.BaseURL. cache may be nil.
func NewClient(cfg Config, cache Cache, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
	}
}

func (c *Client) ListLineUsers(ctx context.Context) ([]LineUser, error) {
	list := []LineUser{}
	if err := c.cached(ctx, lineUsersKey, lineUsersPath, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetLineUser(ctx context.Context, id int) (LineUser, error) {
	var user LineUser
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", lineUsersPath, id), nil, &user); err != nil {
		return LineUser{}, err
	}
	return user, nil
}

func (c *Client) CreateLineUser(ctx context.Context, request LineUserRequest) (LineUser, error) {
	if err := web.ValidateStruct(&request, "EmployeeCode", "WeComID"); err != nil {
		return LineUser{}, err
	}
	if request.ID == nil {
		zero := 0
		request.ID = &zero
	}

	var user LineUser
	if _, err := c.do(ctx, http.MethodPost, lineUsersPath, request, &user); err != nil {
		return LineUser{}, err
	}
	c.invalidate(ctx, lineUsersKey)

	return user, nil
}

// UpdateLineUser returns nil when the backend answers 204 No Content.
func (c *Client) UpdateLineUser(ctx context.Context, id int, request LineUserRequest) (*LineUser, error) {
	if request.ID == nil || *request.ID != id {
		return nil, web.NewRequestError(errors.New("body id must match url id"), http.StatusBadRequest)
	}

	var user LineUser
	status, err := c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", lineUsersPath, id), request, &user)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, lineUsersKey)

	if status == http.StatusNoContent {
		return nil, nil
	}
	return &user, nil
}

func (c *Client) DeleteLineUser(ctx context.Context, id int) error {
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", lineUsersPath, id), nil, nil); err != nil {
		return err
	}
	c.invalidate(ctx, lineUsersKey)

	return nil
}

func (c *Client) GetEmployeeActive(ctx context.Context) ([]EmployeeActive, error) {
	list := []EmployeeActive{}
	if err := c.cached(ctx, employeeActiveKey, employeeActivePath, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetEmployeeHours(ctx context.Context) ([]EmployeeHours, error) {
	list := []EmployeeHours{}
	if err := c.cached(ctx, employeeHoursKey, employeeHoursPath, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetScanSummary returns the first and last scans of the given employees for
// every day of the month. It is never cached.
func (c *Client) GetScanSummary(ctx context.Context, year, month int, workdayIDs []string) ([]ScanSummary, error) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("month", strconv.Itoa(month))
	for _, id := range workdayIDs {
		query.Add("workdayIds", id)
	}

	list := []ScanSummary{}
	if _, err := c.do(ctx, http.MethodGet, scanSummaryPath+"?"+query.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// cached serves path from the cache when possible. Cache failures are logged
// and the backend is asked instead.
func (c *Client) cached(ctx context.Context, key, path string, out interface{}) error {
	if c.cache != nil {
		ok, err := c.cache.Get(ctx, key, out)
		if err != nil {
			c.log.Warn("hr backend cache read failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			return nil
		}
	}

	if _, err := c.do(ctx, http.MethodGet, path, nil, out); err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, out); err != nil {
			c.log.Warn("hr backend cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return nil
}

func (c *Client) invalidate(ctx context.Context, keys ...string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, keys...); err != nil {
		c.log.Warn("hr backend cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// do sends a JSON request and decodes a successful response into out. Error
// statuses from the backend are passed through as request errors.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, errors.Wrap(err, "encoding hr backend request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, errors.Wrap(err, "building hr backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, web.NewRequestError(errors.Wrapf(err, "calling hr backend %s %s", method, path), http.StatusBadGateway)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, web.NewRequestError(errors.Wrap(err, "reading hr backend response"), http.StatusBadGateway)
	}

	c.log.Debug("hr backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return resp.StatusCode, web.NewRequestError(errors.Errorf("hr backend %s %s: %s", method, path, msg), resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNoContent || out == nil || len(bytes.TrimSpace(data)) == 0 {
		return resp.StatusCode, nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return resp.StatusCode, web.NewRequestError(errors.Wrap(err, "decoding hr backend response"), http.StatusBadGateway)
	}

	return resp.StatusCode, nil
}
