// Package backend talks to the emotion classification and emergency relay server.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	predictPath       = "/predict"
	sendEmergencyPath = "/send_emergency"

	// UnknownLabel is reported when the classifier response carries no usable label.
	UnknownLabel = "Unknown"

	maxErrorBodyBytes = 4096
)

var (
	// ErrNetworkFailure indicates the request never produced an HTTP response.
	ErrNetworkFailure = errors.New("network failure")
	// ErrAlertRejected indicates /send_emergency answered with a non-2xx status.
	ErrAlertRejected = errors.New("emergency message rejected")
)

// Classification is one /predict result.
type Classification struct {
	Label      string
	StatusCode int
	Latency    time.Duration
	// Detail carries a server-reported error message, if any.
	Detail string
}

// Client is a thin HTTP client for the two backend endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		if c != nil {
			client.http = c
		}
	}
}

// New builds a client for baseURL with a per-request timeout.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Predict uploads the WAV file at path and returns the detected emotion label.
// Only transport failures are returned as errors; any HTTP response yields a Classification.
func (c *Client) Predict(ctx context.Context, path string) (Classification, error) {
	body, contentType, err := audioForm(path)
	if err != nil {
		return Classification{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, body)
	if err != nil {
		return Classification{}, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	result := Classification{
		Label:      UnknownLabel,
		StatusCode: resp.StatusCode,
	}

	label, detail, readErr := parseLabel(resp.Body)
	result.Latency = c.now().Sub(started)
	if readErr != nil {
		return Classification{}, fmt.Errorf("%w: read predict response: %w", ErrNetworkFailure, readErr)
	}

	result.Detail = detail
	if success(resp.StatusCode) && label != "" {
		result.Label = label
	}
	return result, nil
}

// SendEmergency posts message as text/plain to /send_emergency.
func (c *Client) SendEmergency(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendEmergencyPath, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build emergency request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if success(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	text := strings.TrimSpace(string(snippet))
	if text == "" {
		return fmt.Errorf("%w: %s", ErrAlertRejected, resp.Status)
	}
	return fmt.Errorf("%w: %s: %s", ErrAlertRejected, resp.Status, text)
}

// IsNetworkFailure reports whether err is a transport failure.
func IsNetworkFailure(err error) bool {
	return errors.Is(err, ErrNetworkFailure)
}

func audioForm(path string) (io.Reader, string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open recording %q: %w", path, err)
	}
	defer fd.Close()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", "audio/wav")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create audio part: %w", err)
	}
	if _, err := io.Copy(part, fd); err != nil {
		return nil, "", fmt.Errorf("copy recording: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &b, w.FormDataContentType(), nil
}

func success(status int) bool {
	return status >= 200 && status < 300
}
