package katello

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// apiPrefix — корень Katello API на сервере.
	apiPrefix = "/katello/api/"

	// acceptHeader — версия API, которую ожидает Katello.
	acceptHeader = "application/json,version=2"

	defaultTimeout  = 60 * time.Second
	maxResponseBody = 10 * 1024 * 1024 // 10 MB
)

// Recorder получает результат каждого запроса (для метрик).
type Recorder interface {
	ObserveRequest(method, outcome string, duration time.Duration)
}

// Config — конфигурация Client.
type Config struct {
	// Server — hostname сервера Satellite.
	Server string

	// BaseURL — полный адрес API. Если пустой, строится из Server:
	// https://<server>/katello/api/
	BaseURL string

	User     string
	Password string

	// CAFile — дополнительный PEM-бандл доверенных CA.
	// Проверка сертификатов включена всегда.
	CAFile string

	// Timeout одного запроса (default: 60s).
	Timeout time.Duration

	// HTTPClient — готовый клиент (для тестов). Если задан, CAFile и Timeout
	// игнорируются.
	HTTPClient *http.Client

	Recorder Recorder
	Logger   *slog.Logger
}

// Client — клиент Katello API.
type Client struct {
	baseURL    string
	rootURL    string
	user       string
	password   string
	httpClient *http.Client
	recorder   Recorder
	logger     *slog.Logger
}

// New создаёт клиент для API.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.Server == "" {
			return nil, fmt.Errorf("katello: server is required")
		}
		baseURL = "https://" + cfg.Server + apiPrefix
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("katello: invalid base url %q", baseURL)
	}
	rootURL := parsed.Scheme + "://" + parsed.Host + "/"

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient, err = newHTTPClient(cfg.CAFile, cfg.Timeout)
		if err != nil {
			return nil, err
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		rootURL:    rootURL,
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: httpClient,
		recorder:   cfg.Recorder,
		logger:     logger,
	}, nil
}

// newHTTPClient создаёт HTTP клиент с проверкой сертификатов.
func newHTTPClient(caFile string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if caFile != "" {
		pem, err := os.ReadFile(caFile)
		if err != nil {
			return nil, fmt.Errorf("read ca file: %w", err)
		}

		pool, err := x509.SystemCertPool()
		if err != nil || pool == nil {
			pool = x509.NewCertPool()
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("ca file %s: no certificates found", caFile)
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

// BaseURL возвращает адрес API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get выполняет GET запрос. query может быть nil.
//
// path задаётся относительно корня Katello API; path с ведущим "/" —
// относительно корня сервера (например, /foreman_tasks/api/tasks/<id>).
func (c *Client) Get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	if len(query) > 0 {
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil)
}

// Post выполняет POST запрос с JSON-телом.
func (c *Client) Post(ctx context.Context, path string, body any) (gjson.Result, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (gjson.Result, error) {
	c.logger.Info("api request", "method", method, "path", path)

	start := time.Now()
	res, err := c.roundTrip(ctx, method, path, body)
	if c.recorder != nil {
		c.recorder.ObserveRequest(method, outcome(err), time.Since(start))
	}
	if err != nil {
		c.logger.Error("api request failed",
			"method", method,
			"path", path,
			"error", err,
		)
		return gjson.Result{}, err
	}
	return res, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) (gjson.Result, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), bodyReader)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.user, c.password)
	req.Header.Set("Accept", acceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %s %s: read body: %v", ErrTransport, method, path, err)
	}

	return parseResponse(method, path, resp.StatusCode, data)
}

// resolve строит полный URL запроса.
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.rootURL + strings.TrimPrefix(path, "/")
	}
	return c.baseURL + path
}

// parseResponse разбирает тело ответа.
//
// Поле error верхнего уровня — ошибка приложения при любом HTTP-коде.
func parseResponse(method, path string, statusCode int, data []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: %s %s: HTTP %d: body is not JSON", ErrMalformedResponse, method, path, statusCode)
	}

	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: %s %s: HTTP %d: body is not a JSON object", ErrMalformedResponse, method, path, statusCode)
	}

	if e := res.Get("error"); e.Exists() {
		return gjson.Result{}, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: statusCode,
			Message:    errorMessage(e),
		}
	}

	if statusCode >= 400 {
		msg := res.Get("displayMessage").String()
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return gjson.Result{}, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: statusCode,
			Message:    msg,
		}
	}

	return res, nil
}

// errorMessage достаёт текст из поля error.
//
// Katello отдаёт {"error": {"message": ...}}, иногда только full_messages
// или строку.
func errorMessage(e gjson.Result) string {
	if msg := e.Get("message").String(); msg != "" {
		return msg
	}

	if full := e.Get("full_messages").Array(); len(full) > 0 {
		parts := make([]string, len(full))
		for i, m := range full {
			parts[i] = m.String()
		}
		return strings.Join(parts, "; ")
	}

	if e.Type == gjson.String {
		return e.String()
	}
	return e.Raw
}
