package app

import (
	"context"
	"go-employee/internal/shared/apperror"
	"go-employee/internal/shared/response"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const healthPingTimeout = 2 * time.Second

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

var _ Pinger = (*mongo.Client)(nil)

func registerHealth(router *gin.Engine, db Pinger) {
	router.GET("/healthz", HealthHandler(db))
}

func HealthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		if err := db.Ping(ctx, readpref.Primary()); err != nil {
			response.Error(c, http.StatusServiceUnavailable,
				apperror.ErrServiceUnavailable.Code,
				apperror.ErrServiceUnavailable.Message,
				nil,
			)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	}
}
