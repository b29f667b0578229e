package httputils

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo"
)

type ctxKey int

const (
	requestInfoCtxKey ctxKey = iota
)

// RequestInfo carries per-request metadata through the context.
type RequestInfo struct {
	RealIP     string
	ProxyIPs   []string
	UserAgent  string
	RequestID  string
	AppVersion string
}

func (ri RequestInfo) FirstProxyIP() string {
	if len(ri.ProxyIPs) > 0 {
		return ri.ProxyIPs[0]
	}
	return ""
}

// SetRequestInfo returns a new context with set (or re-set) RequestInfo
// extracted from the HTTP request headers.
func SetRequestInfo(ctx context.Context, c echo.Context, appVersion string) (out context.Context, res RequestInfo) {
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		ipsl := strings.Split(fwd, ", ")
		res.RealIP = ipsl[0]
		if len(ipsl) > 1 {
			res.ProxyIPs = ipsl[1:]
		}
	}
	if res.RealIP == "" {
		res.RealIP = c.RealIP()
	}
	res.UserAgent = c.Request().UserAgent()
	res.RequestID = c.Request().Header.Get("X-Request-Id")
	if res.RequestID == "" {
		res.RequestID = appCreatedRequestID()
	}
	res.AppVersion = appVersion

	out = context.WithValue(ctx, requestInfoCtxKey, res)

	return out, res
}

// GetRequestInfo returns RequestInfo from the context.
func GetRequestInfo(ctx context.Context) (res RequestInfo) {
	res, _ = ctx.Value(requestInfoCtxKey).(RequestInfo)
	return res
}

// RequestInfoMiddleware attaches RequestInfo to every request context and
// echoes the request id back to the client.
func RequestInfoMiddleware(appVersion string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, ri := SetRequestInfo(c.Request().Context(), c, appVersion)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Request-Id", ri.RequestID)
			return next(c)
		}
	}
}

// application created
// ac-2006-01-02T15:04:05.000-XXX###XXX
func appCreatedRequestID() string {
	return "ac-" + time.Now().Format("2006-01-02T15:04:05.000") + randString(9)
}

func randString(len int) string {
	b := make([]byte, len)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
