// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/sagov/internal/app/resources"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"github.com/dalemusser/sagov/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	cur := timeouts.Current()
	logger.Info("handler timeouts",
		zap.Duration("short", cur.Short),
		zap.Duration("medium", cur.Medium),
		zap.Duration("long", cur.Long))

	viewdata.Init(appCfg.SiteName)
	resources.LoadSharedTemplates()

	if deps.AuditRetention != nil {
		deps.AuditRetention.Start()
	}
	return nil
}
