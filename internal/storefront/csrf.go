package storefront

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/voshodshop/cartengine/internal/config"
)

// CSRFTransport adds the anti-forgery header to mutating requests. The token comes from the
// CSRF cookie in jar; when there is none it is fetched first, and a 403 answer is retried once
// with a freshly fetched token.
type CSRFTransport struct {
	next     http.RoundTripper
	jar      http.CookieJar
	tokenURL string
	cfg      config.CSRFConfig
	logger   *zap.Logger
}

func NewCSRFTransport(next http.RoundTripper, jar http.CookieJar, tokenURL string, cfg config.CSRFConfig, logger *zap.Logger) *CSRFTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSRFTransport{
		next:     next,
		jar:      jar,
		tokenURL: tokenURL,
		cfg:      cfg,
		logger:   logger,
	}
}

func (t *CSRFTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isMutating(req.Method) {
		return t.next.RoundTrip(req)
	}

	token := t.cookieToken(req.URL)
	if token == "" {
		token = t.refresh(req)
	}

	resp, err := t.send(req, token, req.Body)
	if err != nil || resp.StatusCode != http.StatusForbidden {
		return resp, err
	}

	// the body has been consumed; without GetBody the request cannot be replayed
	if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
		return resp, nil
	}

	fresh := t.refresh(req)
	if fresh == "" {
		return resp, nil
	}

	body := req.Body
	if req.GetBody != nil {
		body, err = req.GetBody()
		if err != nil {
			return resp, nil
		}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	t.logger.Debug("Retrying request with refreshed CSRF token",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
	)
	return t.send(req, fresh, body)
}

func (t *CSRFTransport) send(req *http.Request, token string, body io.ReadCloser) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Body = body
	if token != "" {
		out.Header.Set(t.cfg.HeaderName, token)
	}
	// the jar may hold a cookie obtained after the client attached its Cookie header
	if t.jar != nil {
		out.Header.Del("Cookie")
		for _, c := range t.jar.Cookies(req.URL) {
			out.AddCookie(c)
		}
	}
	return t.next.RoundTrip(out)
}

func (t *CSRFTransport) cookieToken(u *url.URL) string {
	if t.jar == nil {
		return ""
	}
	for _, c := range t.jar.Cookies(u) {
		if c.Name == t.cfg.CookieName {
			return c.Value
		}
	}
	return ""
}

// refresh fetches a new token. Failures are logged and yield an empty token so the original
// request still goes out.
func (t *CSRFTransport) refresh(orig *http.Request) string {
	tokenURL, err := url.Parse(t.tokenURL)
	if err != nil {
		t.logger.Error("Invalid CSRF token URL", zap.String("url", t.tokenURL), zap.Error(err))
		return ""
	}

	req, err := http.NewRequestWithContext(orig.Context(), http.MethodGet, tokenURL.String(), nil)
	if err != nil {
		return ""
	}
	req.Header.Set("Accept", "application/json")
	if t.jar != nil {
		for _, c := range t.jar.Cookies(tokenURL) {
			req.AddCookie(c)
		}
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Warn("Failed to refresh CSRF token", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if t.jar != nil {
		t.jar.SetCookies(tokenURL, resp.Cookies())
	}
	if token := t.cookieToken(orig.URL); token != "" {
		return token
	}

	var payload struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.logger.Warn("CSRF token endpoint returned no token", zap.Int("status", resp.StatusCode))
		return ""
	}
	return payload.CSRFToken
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
