package health

import (
	"context"
	"encoding/json"
	"net/http"

	discordconfigstore "github.com/dalemusser/sagov/internal/app/store/discordconfig"
	"github.com/dalemusser/sagov/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client *mongo.Client
	DB     *mongo.Database
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client, database and logger.
func NewHandler(client *mongo.Client, db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Client: client,
		DB:     db,
		Log:    logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Delivery string `json:"delivery,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "delivery":"enabled" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
//
// delivery is "enabled" when a Discord bot token is configured and switched
// on, "disabled" otherwise. It is informational and never fails the check.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	if h.DB != nil {
		cfg, err := discordconfigstore.New(h.DB).Current(ctx)
		switch {
		case err != nil:
			h.Log.Warn("health-check: load delivery config failed", zap.Error(err))
		case cfg.Usable():
			resp.Delivery = "enabled"
		default:
			resp.Delivery = "disabled"
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
