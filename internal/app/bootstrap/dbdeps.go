// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/sagov/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// AuditRetention prunes old journal events. Nil when retention is off.
	AuditRetention *workers.AuditRetention
}
