// Package rtdb talks to a Firebase Realtime Database over its REST API.
package rtdb

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

	"github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultTimeout = 30 * time.Second

var scopes = []string{
	"https://www.googleapis.com/auth/firebase.database",
	"https://www.googleapis.com/auth/userinfo.email",
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logg       *logger.Logger
}

var _ treestore.Store = (*Client)(nil)

type Options struct {
	DatabaseURL     string
	CredentialsJSON string
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// New builds a client. With CredentialsJSON set, requests are authorized with
// a service account token; otherwise the supplied or default HTTP client is
// used as-is, which suits the local emulator.
func New(ctx context.Context, opts Options, logg *logger.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.DatabaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("database url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if strings.TrimSpace(opts.CredentialsJSON) != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(opts.CredentialsJSON), scopes...)
		if err != nil {
			return nil, fmt.Errorf("parsing database credentials: %w", err)
		}
		authed := oauth2.NewClient(ctx, creds.TokenSource)
		authed.Timeout = timeout
		httpClient = authed
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "database_url", base), "rtdb client initialized")
	}
	return &Client{baseURL: base, httpClient: httpClient, logg: logg}, nil
}

func (c *Client) Read(ctx context.Context, path string) (any, bool, error) {
	norm, err := treestore.Normalize(path)
	if err != nil {
		return nil, false, err
	}
	var out any
	if err := c.do(ctx, http.MethodGet, norm, nil, nil, &out); err != nil {
		return nil, false, err
	}
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (c *Client) Update(ctx context.Context, updates map[string]any) error {
	validated, err := treestore.ValidateUpdates(updates)
	if err != nil {
		return err
	}
	body := make(map[string]any, len(validated))
	for path, value := range validated {
		normalized, err := treestore.NormalizeValue(value)
		if err != nil {
			return err
		}
		if normalized == nil || treestore.IsDelete(normalized) {
			body[path] = nil
			continue
		}
		body[path] = normalized
	}
	return c.do(ctx, http.MethodPatch, "", nil, body, nil)
}

func (c *Client) Push(ctx context.Context, path string, value any) (string, error) {
	norm, err := treestore.Normalize(path)
	if err != nil {
		return "", err
	}
	normalized, err := treestore.NormalizeValue(value)
	if err != nil {
		return "", err
	}
	if normalized == nil {
		return "", errors.New(errors.CodeValidation, "cannot push an empty value")
	}
	var resp struct {
		Name string `json:"name"`
	}
	if err := c.do(ctx, http.MethodPost, norm, nil, normalized, &resp); err != nil {
		return "", err
	}
	if resp.Name == "" {
		return "", errors.New(errors.CodeDependency, "push response missing key")
	}
	return resp.Name, nil
}

// Query asks the server to filter and limit, then orders the returned object
// locally since REST responses carry no ordering.
func (c *Client) Query(ctx context.Context, path string, q treestore.Query) ([]treestore.Child, error) {
	norm, err := treestore.Normalize(path)
	if err != nil {
		return nil, err
	}
	params, err := queryParams(q)
	if err != nil {
		return nil, err
	}
	var out any
	if err := c.do(ctx, http.MethodGet, norm, params, nil, &out); err != nil {
		return nil, err
	}
	return treestore.ApplyQuery(out, q)
}

func queryParams(q treestore.Query) (url.Values, error) {
	params := url.Values{}
	switch {
	case q.OrderByChild != "":
		params.Set("orderBy", strconv.Quote(strings.Trim(q.OrderByChild, "/")))
	case q.OrderByKey || q.StartAt != nil || q.EndAt != nil || q.LimitToLast > 0:
		params.Set("orderBy", strconv.Quote("$key"))
	}
	for name, bound := range map[string]any{"startAt": q.StartAt, "endAt": q.EndAt} {
		if bound == nil {
			continue
		}
		raw, err := json.Marshal(bound)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		params.Set(name, string(raw))
	}
	if q.LimitToLast > 0 {
		params.Set("limitToLast", strconv.Itoa(q.LimitToLast))
	}
	return params, nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := c.baseURL + "/" + path + ".json"
	if path == "" {
		u = c.baseURL + "/.json"
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, params), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.CodeDependency, err, fmt.Sprintf("rtdb %s %s", method, path))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(b, &apiErr)
		msg := strings.TrimSpace(apiErr.Error)
		if msg == "" {
			msg = strings.TrimSpace(string(b))
		}
		code := errors.CodeDependency
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			code = errors.CodeUnauthorized
		case http.StatusForbidden:
			code = errors.CodeForbidden
		case http.StatusBadRequest:
			code = errors.CodeValidation
		}
		return errors.Newf(code, "rtdb %s %s: %s: %s", method, path, resp.Status, msg)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "decode rtdb response")
	}
	return nil
}
