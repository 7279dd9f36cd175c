package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	RecvWindow int64 // мс
	Timeout    time.Duration

	// отдавать последнюю, ещё не закрытую свечу
	IncludeOpenCandle bool
}

// Client — спот REST Binance: свечи, тикер, заявки, балансы.
type Client struct {
	http    *http.Client
	baseURL string

	apiKey     string
	apiSecret  string
	recvWindow int64

	includeOpen bool
	now         func() time.Time

	mu      sync.RWMutex
	symbols map[string]symbolRules // кэш exchangeInfo
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		apiSecret:   cfg.APISecret,
		recvWindow:  cfg.RecvWindow,
		includeOpen: cfg.IncludeOpenCandle,
		now:         time.Now,
		symbols:     make(map[string]symbolRules),
	}
}

func (c *Client) hasCreds() bool { return c.apiKey != "" && c.apiSecret != "" }

func (c *Client) sign(payload string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}

// public — GET без подписи.
func (c *Client) public(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	return c.do(req, out)
}

// signed — запрос с timestamp/recvWindow и HMAC-SHA256 подписью query.
func (c *Client) signed(ctx context.Context, method, path string, q url.Values, out any) error {
	if !c.hasCreds() {
		return errors.New("binance: api creds empty")
	}
	if q == nil {
		q = url.Values{}
	}
	q.Set("timestamp", strconv.FormatInt(c.now().UnixMilli(), 10))
	if c.recvWindow > 0 {
		q.Set("recvWindow", strconv.FormatInt(c.recvWindow, 10))
	}
	query := q.Encode()
	query += "&signature=" + c.sign(query)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "%s %s: read body", req.Method, req.URL.Path)
	}

	if resp.StatusCode/100 != 2 {
		apiErr := &APIError{Status: resp.StatusCode}
		if e := sonic.Unmarshal(data, apiErr); e != nil || apiErr.Msg == "" {
			apiErr.Msg = string(data)
		}
		return errors.Wrapf(apiErr, "%s %s", req.Method, req.URL.Path)
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "%s %s: decode", req.Method, req.URL.Path)
	}
	return nil
}
