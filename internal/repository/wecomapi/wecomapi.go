// Package wecomapi sends application messages through the WeCom (WeChat Work)
// server API and decrypts the callbacks WeCom posts back.
package wecomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://qyapi.weixin.qq.com"

	tokenPath = "/cgi-bin/gettoken"
	sendPath  = "/cgi-bin/message/send"

	// tokens are refreshed this long before WeCom expires them.
	tokenMargin        = 5 * time.Minute
	defaultTokenExpiry = 7200 * time.Second

	errCodeInvalidToken = 40014
	errCodeExpiredToken = 42001
)

// APIError is a non-zero errcode answered by WeCom.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wecom errcode %d: %s", e.Code, e.Message)
}

type Config struct {
	BaseURL string
	CorpID  string
	AgentID int
	Secret  string
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
	now  func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
		now:  time.Now,
	}
}

type response struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// AccessToken returns the cached application token, fetching a new one when
// it is missing or about to expire.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expires.Add(-tokenMargin)) {
		return c.token, nil
	}

	if c.cfg.CorpID == "" || c.cfg.Secret == "" {
		return "", errors.New("wecom corp id and secret are not configured")
	}

	query := url.Values{}
	query.Set("corpid", c.cfg.CorpID)
	query.Set("corpsecret", c.cfg.Secret)

	var resp response
	if err := c.call(ctx, http.MethodGet, tokenPath+"?"+query.Encode(), nil, &resp); err != nil {
		return "", errors.Wrap(err, "getting wecom access token")
	}

	expiresIn := time.Duration(resp.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = defaultTokenExpiry
	}

	c.token = resp.AccessToken
	c.expires = c.now().Add(expiresIn)
	c.log.Info("wecom access token refreshed", zap.Duration("expires_in", expiresIn))

	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// SendText sends a text message to one WeCom user. A rejected token is
// refreshed and the message sent once more.
func (c *Client) SendText(ctx context.Context, userID, content string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("wecom user id is required")
	}

	payload := map[string]interface{}{
		"touser":  userID,
		"msgtype": "text",
		"agentid": c.cfg.AgentID,
		"text":    map[string]string{"content": content},
		"safe":    0,
	}

	err := c.send(ctx, payload)

	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Code == errCodeInvalidToken || apiErr.Code == errCodeExpiredToken) {
		c.dropToken()
		err = c.send(ctx, payload)
	}

	return errors.Wrapf(err, "sending wecom message to %s", userID)
}

func (c *Client) send(ctx context.Context, payload interface{}) error {
	token, err := c.AccessToken(ctx)
	if err != nil {
		return err
	}

	var resp response
	return c.call(ctx, http.MethodPost, sendPath+"?access_token="+url.QueryEscape(token), payload, &resp)
}

// call performs one API request. WeCom reports failures as a non-zero errcode
// in a 200 response.
func (c *Client) call(ctx context.Context, method, path string, body interface{}, out *response) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encoding wecom request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "building wecom request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling wecom")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("wecom answered %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding wecom response")
	}
	if out.ErrCode != 0 {
		return &APIError{Code: out.ErrCode, Message: out.ErrMsg}
	}

	return nil
}
