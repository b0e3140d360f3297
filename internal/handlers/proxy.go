package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"meme-gallery-backend/internal/middleware"
	"meme-gallery-backend/internal/services"
)

const (
	DefaultProxyTimeout = 10 * time.Second
	// Upper bound on a proxied object, the body is buffered in memory.
	maxProxyBytes = 32 << 20

	proxyCacheControl = "public, max-age=31536000"
	// Proxied bytes are served from the site's own origin and must never
	// run as a document.
	proxyContentSecurityPolicy = "default-src 'none'; sandbox"
	maxProxyRedirects          = 5
)

// ProxyHandler streams objects from the object store to browsers that
// cannot load them directly.
type ProxyHandler struct {
	hosts   services.MediaHosts
	client  *http.Client
	timeout time.Duration
}

func NewProxyHandler(hosts services.MediaHosts, timeout time.Duration) *ProxyHandler {
	if timeout <= 0 {
		timeout = DefaultProxyTimeout
	}
	h := &ProxyHandler{
		hosts:   hosts,
		timeout: timeout,
	}
	h.client = &http.Client{CheckRedirect: h.checkRedirect}
	return h
}

// checkRedirect only follows redirects that stay on object store hosts.
func (h *ProxyHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxProxyRedirects {
		return fmt.Errorf("stopped after %d redirects", maxProxyRedirects)
	}
	if !h.hosts.Match(req.URL.String()) {
		return fmt.Errorf("%w: %s", errRedirectNotAllowed, req.URL.Redacted())
	}
	return nil
}

// Proxy godoc
// @Summary     Object store media proxy
// @Description Fetches an image from the object store and returns it with long-lived cache headers.
// @Tags        media
// @Produce     octet-stream
// @Param       url query string true "Absolute object store URL"
// @Success     200 {file} binary
// @Failure     400 {string} string
// @Failure     502 {string} string
// @Failure     504 {string} string
// @Router      /r2-proxy [get]
func (h *ProxyHandler) Proxy(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Content-Security-Policy", proxyContentSecurityPolicy)

	imageURL := c.Query("url")
	if imageURL == "" {
		c.String(http.StatusBadRequest, "URL parameter is required")
		return
	}
	if !h.hosts.Match(imageURL) {
		c.String(http.StatusBadRequest, "Invalid URL, must be from our object store")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid URL: %v", err)
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.upstreamFailure(c, imageURL, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.String(resp.StatusCode, "Error fetching image: %s", resp.Status)
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyBytes+1))
	if err != nil {
		h.upstreamFailure(c, imageURL, err)
		return
	}
	if len(body) > maxProxyBytes {
		c.String(http.StatusBadGateway, "Error: image exceeds %d bytes", maxProxyBytes)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", proxyCacheControl)
	c.Header("Access-Control-Allow-Origin", "*")
	c.Data(http.StatusOK, contentType, body)
}

func (h *ProxyHandler) upstreamFailure(c *gin.Context, imageURL string, err error) {
	log.Printf("[%s] Proxy fetch of %s failed: %v", middleware.GetRequestID(c), imageURL, err)
	if errors.Is(err, errRedirectNotAllowed) {
		c.String(http.StatusBadGateway, "Error: upstream redirected outside the object store")
		return
	}
	if isTimeout(err) {
		c.String(http.StatusGatewayTimeout, "Error: upstream timed out after %s", h.timeout)
		return
	}
	c.String(http.StatusInternalServerError, "Error: %v", err)
}

var errRedirectNotAllowed = errors.New("redirect target is not an object store URL")

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
