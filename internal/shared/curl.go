// Utilities for parsing "Copy as cURL" commands taken from the browser client.
package shared

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	curlHeader = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	curlCookie = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
	curlURL    = regexp.MustCompile(`curl\s+(?:--url\s+)?'(https?://[^']+)'|curl\s+(?:--url\s+)?"(https?://[^"]+)"|(https?://\S+)`)
)

// CurlRequest represents the URL, headers and cookies of a parsed cURL command.
type CurlRequest struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlRequest, error) {
	content, err := VerifyAndReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts its URL, headers and cookie.
//
// A cookie passed with -b wins over a Cookie header.
func ParseCurlCommand(curlCmd string) (*CurlRequest, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}
	var headerCookie string

	for _, match := range curlHeader.FindAllStringSubmatch(curlCmd, -1) {
		line := firstGroup(match)
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		req.Headers[key] = value
	}

	if m := curlCookie.FindStringSubmatch(curlCmd); m != nil {
		req.Cookie = firstGroup(m)
	}
	if req.Cookie == "" {
		req.Cookie = headerCookie
	}

	if m := curlURL.FindStringSubmatch(curlCmd); m != nil {
		req.URL = strings.TrimRight(firstGroup(m), "'\"")
	}

	if len(req.Headers) == 0 && req.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return req, nil
}

// Header looks up a header case-insensitively.
func (c *CurlRequest) Header(name string) string {
	for k, v := range c.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// BearerToken returns the token of an "Authorization: Bearer ..." header.
func (c *CurlRequest) BearerToken() (string, error) {
	auth := c.Header("Authorization")
	scheme, token, ok := strings.Cut(auth, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: no bearer token in curl command", ErrNotAuthenticated)
	}
	return strings.TrimSpace(token), nil
}

// UserID returns the numeric X-User-Id header, or 0 when absent.
func (c *CurlRequest) UserID() int64 {
	id, err := strconv.ParseInt(c.Header("X-User-Id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// BaseURL returns the scheme and host of the request URL.
func (c *CurlRequest) BaseURL() string {
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
