package httpkit

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"leadscore_backend/platform/apperr"
	"leadscore_backend/platform/config"
	"leadscore_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// gin context keys
const (
	ContextUserIDKey   = "userID"
	ContextRolesKey    = "roles"
	ContextTenantIDKey = "tenantID"
)

// HeaderRequestID is echoed on every response and accepted from trusted proxies.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLen = 64

var errInvalidToken = errors.New("invalid token")

// RequestLogger assigns a request id, exposes it to downstream loggers through
// the request context and logs one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.RequestIDKey, requestID))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		reqLog := log.WithRequestID(requestID)
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			reqLog.HTTPError(c.Request.Method, path, status, c.Errors.Last(), c.ClientIP())
			return
		}
		reqLog.HTTPRequest(c.Request.Method, path, status, float64(time.Since(start).Milliseconds()), c.ClientIP())
	}
}

// SecurityHeaders sets the headers of a JSON-only API.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Cache-Control", "no-store")
		if c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

// IPRateLimiter keeps one token bucket per client IP.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	log      *logger.Logger
}

func NewIPRateLimiter(limit rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
		log:      log,
	}
}

// NewAPIRateLimiter reads RATE_LIMIT_RPS and RATE_LIMIT_BURST; burst defaults to twice the rate.
func NewAPIRateLimiter(cfg config.HTTPConfig, log *logger.Logger) *IPRateLimiter {
	rps := cfg.GetRateLimitRPS()
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.GetRateLimitBurst()
	if burst <= 0 {
		burst = int(math.Ceil(rps * 2))
	}
	return NewIPRateLimiter(rate.Limit(rps), burst, log)
}

func (l *IPRateLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.limiters[ip]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = b
	}
	return b
}

// RateLimit rejects requests over budget with 429 and a Retry-After hint.
func (l *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		res := l.bucket(ip).Reserve()
		if delay := res.Delay(); !res.OK() || delay > 0 {
			res.Cancel()
			if l.log != nil {
				l.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			if res.OK() {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}

type accessClaims struct {
	Type  string   `json:"type"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// AuthRequired accepts HMAC-signed access tokens whose subject is the user id.
// The tenant is resolved later from the user's profile, never from the token.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "missing token")
			return
		}

		claims, err := parseAccessToken(raw, []byte(cfg.GetJWTAccessSecret()))
		if err != nil {
			abortUnauthorized(c, errInvalidToken.Error())
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortUnauthorized(c, errInvalidToken.Error())
			return
		}

		roles := claims.Roles
		if roles == nil {
			roles = []string{}
		}
		c.Set(ContextUserIDKey, userID)
		c.Set(ContextRolesKey, roles)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), logger.UserIDKey, userID.String()))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func parseAccessToken(raw string, secret []byte) (*accessClaims, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
	)
	if err != nil {
		return nil, err
	}
	if claims.Type != "access" {
		return nil, errInvalidToken
	}
	return claims, nil
}

func abortUnauthorized(c *gin.Context, message string) {
	err := apperr.Unauthorized(message)
	c.AbortWithStatusJSON(err.HTTPStatus(), ErrorResponse{
		Error: err.Message,
		Code:  string(err.Code),
	})
}
