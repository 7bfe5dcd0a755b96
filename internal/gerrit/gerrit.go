// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package gerrit is a client for the Gerrit code review REST API.
//
// Reads are anonymous. Writes are authenticated the same way git is
// configured on the host: with no credential helper the git http cookie
// file is used, and with a gcloud credential helper a bearer token is
// obtained and written to a private, user-scoped header file before use.
//
// See https://gerrit-review.googlesource.com/Documentation/rest-api.html
// for the wire format, including the XSSI protection prefix on responses.
package gerrit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/matt-FFFFFF/shellkit"
	"github.com/spf13/afero"
)

// DefaultHost is the review host used when none is configured.
const DefaultHost = "https://chromium-review.googlesource.com"

var (
	// ErrCredentialUnavailable is returned when neither a git http cookie file
	// nor a usable credential helper token is available.
	ErrCredentialUnavailable = errors.New("no git http cookie file and no usable credential helper token")
	// ErrUnsupportedCredentialHelper is returned for credential helpers this
	// client does not know how to drive.
	ErrUnsupportedCredentialHelper = errors.New("unsupported git credential.helper")
	// ErrMissingXSSIPrefix is returned when a response lacks the XSSI
	// protection prefix and is therefore not a Gerrit JSON response.
	ErrMissingXSSIPrefix = errors.New("response is missing the XSSI protection prefix")
	// ErrRequestFailed is returned when the API responds with an error status.
	ErrRequestFailed = errors.New("request failed")
)

// xssiPrefix guards Gerrit JSON responses against cross-site script inclusion.
const xssiPrefix = ")]}'\n"

// Client talks to one Gerrit host. The credential lookup shells out to git
// and gcloud once, on the first authenticated call, and is cached for the
// lifetime of the client.
type Client struct {
	host       string
	http       *retryablehttp.Client
	fs         afero.Fs
	cookieFile string // overrides the git http.cookiefile lookup

	gitConfig   func(ctx context.Context, key string) (string, error)
	gcloudToken func(ctx context.Context) (string, error)

	authOnce  sync.Once
	authKey   string
	authValue string
	authErr   error
}

// Option implements a functional options pattern for Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *retryablehttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithCookieFile sets the HTTP cookie file to use, instead of asking git
// for its http.cookiefile.
func WithCookieFile(path string) Option {
	return func(c *Client) {
		c.cookieFile = path
	}
}

// WithFs sets the filesystem used for cookie and header files.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// New creates a client for the given review host. An empty host selects
// DefaultHost.
func New(host string, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}

	c := &Client{
		host:        strings.TrimRight(host, "/"),
		fs:          afero.NewOsFs(),
		gitConfig:   gitConfigValue,
		gcloudToken: gcloudAccessToken,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = retryablehttp.NewClient()
		c.http.Logger = nil
	}

	return c
}

// gitConfigValue reads one git config key, returning an empty string when
// the key is not set.
func gitConfigValue(ctx context.Context, key string) (string, error) {
	cmd, err := shellkit.New(ctx, "git config", key)
	if err != nil {
		return "", err
	}

	return cmd.Stdout(ctx, shellkit.WithNoCheck())
}

// gcloudAccessToken obtains a fresh access token from the gcloud CLI.
func gcloudAccessToken(ctx context.Context) (string, error) {
	cmd, err := shellkit.New(ctx, "gcloud auth print-access-token")
	if err != nil {
		// gcloud is not installed.
		return "", errors.Join(ErrCredentialUnavailable, err)
	}

	return cmd.Stdout(ctx, shellkit.WithNoCheck())
}

// auth resolves the authentication header once and caches it.
func (c *Client) auth(ctx context.Context) (string, string, error) {
	c.authOnce.Do(func() {
		c.authKey, c.authValue, c.authErr = c.resolveAuth(ctx)
	})

	return c.authKey, c.authValue, c.authErr
}

// resolveAuth mirrors how git itself would authenticate: a configured
// gcloud credential helper wins, otherwise the http cookie file is used.
func (c *Client) resolveAuth(ctx context.Context) (string, string, error) {
	helper, err := c.gitConfig(ctx, "credential.helper")
	if err != nil {
		return "", "", err
	}

	if helper == "" {
		return c.cookieAuth(ctx)
	}

	if strings.HasSuffix(helper, "gcloud.sh") {
		return c.bearerAuth(ctx)
	}

	return "", "", fmt.Errorf("%w: %q", ErrUnsupportedCredentialHelper, helper)
}

func (c *Client) cookieAuth(ctx context.Context) (string, string, error) {
	path := c.cookieFile

	if path == "" {
		var err error

		path, err = c.gitConfig(ctx, "http.cookiefile")
		if err != nil {
			return "", "", err
		}
	}

	if path == "" {
		return "", "", fmt.Errorf("%w: git http.cookiefile is not configured", ErrCredentialUnavailable)
	}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return "", "", errors.Join(ErrCredentialUnavailable, err)
	}

	header, err := cookieHeader(data, c.host)
	if err != nil {
		return "", "", err
	}

	return "Cookie", header, nil
}

func (c *Client) bearerAuth(ctx context.Context) (string, string, error) {
	token, err := c.gcloudToken(ctx)
	if err != nil {
		return "", "", err
	}

	if token == "" {
		return "", "", fmt.Errorf("%w: gcloud returned no access token", ErrCredentialUnavailable)
	}

	value := "Bearer " + token

	// The token goes to a private header file so it does not appear in logs
	// or error messages.
	if err := afero.WriteFile(c.fs, authHeadersFile(), []byte("Authorization: "+value), 0o600); err != nil {
		return "", "", err
	}

	return "Authorization", value, nil
}

// authHeadersFile is the user-scoped file holding the bearer header.
func authHeadersFile() string {
	name := "unknown"
	if u, err := user.Current(); err == nil {
		name = u.Username
	}

	return filepath.Join(os.TempDir(), "shellkit_gcloud_auth_headers_"+name)
}

// cookieHeader builds a Cookie header value from a curl-format cookie file,
// keeping only cookies whose domain matches the review host.
func cookieHeader(data []byte, host string) (string, error) {
	u, err := url.Parse(host)
	if err != nil {
		return "", err
	}

	hostname := u.Hostname()

	var pairs []string

	for line := range strings.Lines(string(data)) {
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimPrefix(line, "#HttpOnly_")

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			continue
		}

		domain := strings.TrimPrefix(fields[0], ".")
		if hostname != domain && !strings.HasSuffix(hostname, "."+domain) {
			continue
		}

		pairs = append(pairs, fields[5]+"="+fields[6])
	}

	if len(pairs) == 0 {
		return "", fmt.Errorf("%w: no cookies for host %q", ErrCredentialUnavailable, hostname)
	}

	return strings.Join(pairs, "; "), nil
}

// get performs an anonymous read and returns the JSON payload with the
// XSSI prefix stripped.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.host+"/"+path, nil)
	if err != nil {
		return nil, err
	}

	return c.do(req)
}

// post performs an authenticated write against the /a/ path prefix.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	key, value, err := c.auth(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.host+"/a/"+path, payload)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(key, value)

	return c.do(req)
}

func (c *Client) do(req *retryablehttp.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s %s returned %s", ErrRequestFailed, req.Method, req.URL.Path, resp.Status)
	}

	return stripXSSI(body)
}

func stripXSSI(body []byte) ([]byte, error) {
	if !bytes.HasPrefix(body, []byte(xssiPrefix)) {
		return nil, ErrMissingXSSIPrefix
	}

	return body[len(xssiPrefix):], nil
}
