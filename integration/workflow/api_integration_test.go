package workflow_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gavv/httpexpect/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/killallgit/segments-api/api"
	"github.com/killallgit/segments-api/api/types"
	"github.com/killallgit/segments-api/internal/database"
	"github.com/killallgit/segments-api/internal/metrics"
	"github.com/killallgit/segments-api/internal/services/auth"
	"github.com/killallgit/segments-api/internal/services/cache"
	"github.com/killallgit/segments-api/internal/services/projects"
	"github.com/killallgit/segments-api/internal/services/segments"
	"github.com/killallgit/segments-api/internal/services/users"
	"github.com/killallgit/segments-api/pkg/config"
	"github.com/killallgit/segments-api/pkg/logger"
)

// newTestServer wires the full stack the way serve does, with writes protected
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Host: "127.0.0.1", Port: 5000, MaxBodyBytes: 1 << 20},
		Database:    config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"},
		Auth: config.AuthConfig{
			JWTSecret:     "integration-secret",
			TokenTTL:      time.Hour,
			BcryptCost:    4,
			ProtectWrites: true,
		},
		Segments:   config.SegmentsConfig{MaxMergeRetries: 5},
		Cache:      config.CacheConfig{Driver: "memory", DefaultTTL: time.Minute, CleanupInterval: time.Minute},
		Security:   config.SecurityConfig{CORSOrigins: []string{"*"}},
		Monitoring: config.MonitoringConfig{Enabled: true, MetricsPath: "/metrics"},
	}

	db, err := database.Initialize(cfg.Database)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	userCache, err := cache.New(t.Context(), cfg.Cache)
	require.NoError(t, err)

	m, err := metrics.New()
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	require.NoError(t, err)

	log := logger.NewNop()
	projectRepo := projects.NewRepository(db.DB)
	userService := users.NewService(users.NewRepository(db.DB), userCache, users.Config{
		BcryptCost: cfg.Auth.BcryptCost,
		CacheTTL:   cfg.Cache.DefaultTTL,
	}, log)

	deps := &types.Dependencies{
		Version:        "test",
		DB:             db,
		Config:         cfg,
		Logger:         log,
		Metrics:        m,
		SegmentService: segments.NewService(segments.NewRepository(db.DB), projectRepo, segments.WithRecorder(m)),
		ProjectService: projects.NewService(projectRepo, log),
		UserService:    userService,
		AuthService:    auth.NewService(userService, tokens, log),
	}

	server := api.NewServer(cfg, deps)
	require.NoError(t, server.Initialize())

	ts := httptest.NewServer(server.Engine())
	t.Cleanup(func() {
		ts.Close()
		_ = userCache.Close()
		_ = db.Close()
	})
	return ts
}

type account struct {
	username string
	email    string
	password string
}

func newAccount() account {
	return account{
		username: gofakeit.Username() + gofakeit.DigitN(4),
		email:    strings.ToLower(gofakeit.LetterN(10)) + "@example.com",
		password: gofakeit.Password(true, true, true, false, false, 12),
	}
}

// login registers acc and returns its id and bearer token
func login(e *httpexpect.Expect, acc account) (string, string) {
	e.POST("/api/auth/register").
		WithJSON(map[string]string{"username": acc.username, "email": acc.email, "password": acc.password}).
		Expect().
		Status(http.StatusCreated)

	data := e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": acc.email, "password": acc.password}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("success", true).
		Value("data").Object()

	return data.Value("user").Object().Value("_id").String().Raw(), data.Value("token").String().NotEmpty().Raw()
}

func TestSegmentWorkflow(t *testing.T) {
	ts := newTestServer(t)
	e := httpexpect.Default(t, ts.URL)

	e.GET("/health").Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("services").Object().HasValue("database", "healthy")

	// Writes need a token
	e.POST("/api/projects").
		WithJSON(map[string]string{"video": "https://cdn.example.com/a.mp4"}).
		Expect().
		Status(http.StatusUnauthorized)

	aliceID, aliceToken := login(e, newAccount())
	bobID, bobToken := login(e, newAccount())

	alice := e.Builder(func(req *httpexpect.Request) {
		req.WithHeader("Authorization", "Bearer "+aliceToken)
	})
	bob := e.Builder(func(req *httpexpect.Request) {
		req.WithHeader("Authorization", "Bearer "+bobToken)
	})

	alice.GET("/api/auth/verify").Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("user").Object().HasValue("_id", aliceID)

	projectID := alice.POST("/api/projects").
		WithJSON(map[string]string{"video": "https://cdn.example.com/a.mp4", "audio": "https://cdn.example.com/a.wav"}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().Value("data").Object().Value("project").Object().Value("_id").String().NotEmpty().Raw()

	segment := alice.POST("/api/segments").
		WithJSON(map[string]interface{}{"startTime": 1.5, "endTime": 4, "projectid": projectID, "prosody": "calm"}).
		Expect().
		Status(http.StatusCreated).
		JSON().Object().Value("data").Object().Value("segment").Object()
	segment.HasValue("duration", 2.5)
	segment.HasValue("views", 0)
	segment.Value("descriptions_prosody").Array().IsEmpty()
	segmentID := segment.Value("_id").String().Raw()

	// Reversed times are rejected
	alice.POST("/api/segments").
		WithJSON(map[string]interface{}{"startTime": 5, "endTime": 1, "projectid": projectID}).
		Expect().
		Status(http.StatusBadRequest).
		JSON().Object().HasValue("success", false)

	mergePath := "/api/segments/" + segmentID + "/descriptions_prosody"
	alice.POST(mergePath).
		WithJSON(map[string]interface{}{"userId": aliceID, "fieldName": "tone", "fieldValue": "warm", "timestamp": 100}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("message", "Field 'tone' added successfully").
		Value("data").Object().HasValue("action", "insert").HasValue("total_entries", 1)

	alice.POST(mergePath).
		WithJSON(map[string]interface{}{"userId": aliceID, "fieldName": "tone", "fieldValue": "cold", "timestamp": 200}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("message", "Field 'tone' updated successfully").
		Value("data").Object().HasValue("action", "update").HasValue("total_entries", 1)

	bob.POST(mergePath).
		WithJSON(map[string]interface{}{"userId": bobID, "fieldName": "pitch", "fieldValue": 3.5, "timestamp": 300}).
		Expect().
		Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("total_entries", 2)

	bob.POST(mergePath).
		WithJSON(map[string]interface{}{"userId": bobID, "fieldValue": "x", "timestamp": 1}).
		Expect().
		Status(http.StatusBadRequest)

	for i := 0; i < 3; i++ {
		e.POST("/api/segments/" + segmentID + "/views").Expect().Status(http.StatusOK)
	}
	e.POST("/api/segments/"+segmentID+"/likes").Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("likes", 1)

	stored := e.GET("/api/segments/" + segmentID).Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("segment").Object()
	stored.HasValue("views", 3)
	stored.HasValue("likes", 1)
	entries := stored.Value("descriptions_prosody").Array()
	entries.Length().IsEqual(2)
	entries.Value(0).Object().HasValue("user_id", aliceID).HasValue("tone", "cold").
		Value("timestamps").Object().HasValue("tone", 200)
	entries.Value(1).Object().HasValue("user_id", bobID).HasValue("pitch", 3.5)

	e.GET("/api/projects/"+projectID).Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().Value("project").Object().HasValue("segments_count", 1)

	e.GET("/api/segments/project/"+projectID).Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("count", 1).HasValue("project_id", projectID)

	alice.DELETE("/api/segments/"+segmentID).Expect().Status(http.StatusOK).
		JSON().Object().Value("data").Object().HasValue("segment_id", segmentID)
	e.GET("/api/segments/" + segmentID).Expect().Status(http.StatusNotFound)

	alice.DELETE("/api/projects/" + projectID).Expect().Status(http.StatusOK)
	e.GET("/api/projects/" + projectID).Expect().Status(http.StatusNotFound)

	e.GET("/metrics").Expect().Status(http.StatusOK).
		Body().Contains("segments_api_http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	e := httpexpect.Default(t, ts.URL)

	e.GET("/api/nowhere").Expect().Status(http.StatusNotFound).
		JSON().Object().HasValue("success", false).HasValue("path", "/api/nowhere")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	e := httpexpect.Default(t, ts.URL)

	acc := newAccount()
	login(e, acc)

	e.POST("/api/auth/login").
		WithJSON(map[string]string{"email": acc.email, "password": acc.password + "x"}).
		Expect().
		Status(http.StatusUnauthorized).
		JSON().Object().HasValue("success", false)
}
