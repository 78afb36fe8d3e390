// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides the outbound HTTP client used by the geocoders.
package httputils

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 10 * time.Second

// ClientOptions configures NewClient.
type ClientOptions struct {
	// UserAgent is sent on every request when non-empty.
	UserAgent string
	// Headers are added to every request.
	Headers map[string]string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// Trace dumps requests and responses at debug level.
	Trace bool
	// Logger receives the trace; defaults to the standard logrus logger.
	Logger log.FieldLogger
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// NewClient builds an http.Client with the header and logging round
// trippers stacked on top of the base transport.
func NewClient(opts ClientOptions) *http.Client {
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	if opts.Trace {
		logger := opts.Logger
		if logger == nil {
			logger = log.StandardLogger()
		}

		transport = &LoggingRoundTripper{Transport: transport, Logger: logger}
	}

	headers := make(map[string]string, len(opts.Headers)+1)
	for k, v := range opts.Headers {
		headers[k] = v
	}

	if opts.UserAgent != "" {
		headers["User-Agent"] = opts.UserAgent
	}

	if len(headers) > 0 {
		transport = &AppendRequestHeadersRoundTripper{Transport: transport, Headers: headers}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{Transport: transport, Timeout: timeout}
}

/////////////////////////////////////////
/// RoundTrippers

// LoggingRoundTripper dumps each transaction to a logger at debug level.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Logger    log.FieldLogger
	DumpBody  bool
}

// reduce the content of the lines.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 256, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "authorization:") {
			line = "Authorization: <redacted>"
		}

		if len(line) > maxChars {
			line = line[0:maxChars] + "…"
		}

		lines[i] = fmt.Sprintf("%c %s", prefix, strings.TrimRight(line, "\r"))
	}

	return lines
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	dump, err := httputil.DumpRequestOut(req, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	lines := abbreviate(strings.Split(strings.TrimSpace(string(dump)), "\n"), '>')
	t.Logger.Debug(strings.Join(lines, "\n"))

	return nil
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP response: %w", err)
	}

	lines := abbreviate(strings.Split(strings.TrimSpace(string(dump)), "\n"), '<')
	t.Logger.WithField("duration", duration).Debug(strings.Join(lines, "\n"))

	return nil
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Logger == nil {
		return t.Transport.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		t.Logger.WithError(err).WithField("url", req.URL.Redacted()).Debug("http transport error")

		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		resp.Body.Close()

		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}
