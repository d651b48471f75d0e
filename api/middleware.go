package api

import (
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	authapi "github.com/killallgit/segments-api/api/auth"
	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/internal/metrics"
	"github.com/killallgit/segments-api/internal/services/auth"
	"github.com/killallgit/segments-api/pkg/config"
	"github.com/killallgit/segments-api/pkg/logger"
)

// Context keys set by RequireAuth
const (
	ContextKeyClaims = "auth_claims"
	ContextKeyUserID = "user_id"
)

const (
	defaultMaxBodyBytes   = 1024 * 1024
	limiterCleanupEvery   = 5 * time.Minute
	limiterIdleExpiration = 10 * time.Minute
)

// CORS builds the cors middleware from the security settings
func CORS(cfg config.SecurityConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: cfg.CORSMethods,
		AllowHeaders: cfg.CORSHeaders,
		MaxAge:       12 * time.Hour,
	}
	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(corsConfig.AllowHeaders) == 0 {
		corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 || containsWildcard(origins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func RequestSizeLimit() gin.HandlerFunc {
	return RequestSizeLimitWithSize(defaultMaxBodyBytes)
}

func RequestSizeLimitWithSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost ||
			c.Request.Method == http.MethodPut ||
			c.Request.Method == http.MethodPatch {
			if c.Request.ContentLength > maxBytes {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, types.Response{
					Success: false,
					Message: "Request body too large",
				})
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// clientLimiter holds a rate limiter and its last accessed time
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

func (cl *clientLimiter) touch(now time.Time) {
	cl.lastSeen.Store(now.UnixNano())
}

func (cl *clientLimiter) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, cl.lastSeen.Load()))
}

// RateLimiter keeps one token bucket per client IP and evicts idle ones in the background
type RateLimiter struct {
	limiters *sync.Map
	rps      int
	burst    int

	cleanupEvery time.Duration
	startOnce    sync.Once
	stopOnce     sync.Once
	stop         chan struct{}
	done         chan struct{}
}

// NewRateLimiter creates a limiter allowing rps requests per second with the given burst
func NewRateLimiter(rps, burst int) *RateLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = rps
	}
	return &RateLimiter{
		limiters:     &sync.Map{},
		rps:          rps,
		burst:        burst,
		cleanupEvery: limiterCleanupEvery,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Middleware rejects requests over the client's budget with 429
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	rl.startOnce.Do(func() {
		go rl.cleanupOldRateLimiters()
	})

	return func(c *gin.Context) {
		now := time.Now()
		fresh := &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Second/time.Duration(rl.rps)), rl.burst),
		}
		fresh.touch(now)

		limiterInterface, _ := rl.limiters.LoadOrStore(c.ClientIP(), fresh)
		cl := limiterInterface.(*clientLimiter)
		cl.touch(now)

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.Response{
				Success: false,
				Message: "Rate limit exceeded. Please slow down your requests.",
			})
			return
		}
		c.Next()
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
		started := true
		rl.startOnce.Do(func() { started = false })
		if started {
			<-rl.done
		}
	})
}

func (rl *RateLimiter) cleanupOldRateLimiters() {
	defer close(rl.done)

	ticker := time.NewTicker(rl.cleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now(), limiterIdleExpiration)
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time, maxIdle time.Duration) {
	rl.limiters.Range(func(key, value interface{}) bool {
		if value.(*clientLimiter).idleSince(now) > maxIdle {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// Recovery turns a handler panic into a logged 500 with the standard envelope
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.Error("panic recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path)
		c.Abort()
		types.SendInternalError(c, "Internal server error")
	})
}

// RequestLogger logs one line per request, levelled by response status
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request rejected", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// Metrics records request counts and latency by route template
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// RequireAuth rejects requests without a valid bearer token
func RequireAuth(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := authapi.BearerToken(c.GetHeader("Authorization"))
		claims, err := authService.ParseToken(token)
		if err != nil {
			c.Abort()
			types.SendError(c, nil, err, "Authentication failed")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Next()
	}
}
