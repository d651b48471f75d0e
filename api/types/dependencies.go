package types

import (
	"github.com/killallgit/segments-api/internal/database"
	"github.com/killallgit/segments-api/internal/metrics"
	"github.com/killallgit/segments-api/internal/services/auth"
	"github.com/killallgit/segments-api/internal/services/projects"
	"github.com/killallgit/segments-api/internal/services/segments"
	"github.com/killallgit/segments-api/internal/services/users"
	"github.com/killallgit/segments-api/pkg/config"
	"github.com/killallgit/segments-api/pkg/logger"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	Version        string
	DB             *database.DB
	Config         *config.Config
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	SegmentService segments.Service
	ProjectService projects.Service
	UserService    users.Service
	AuthService    *auth.Service
}
