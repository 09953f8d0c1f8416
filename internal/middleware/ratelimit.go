package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"

	"github.com/fotofolio/backend/pkg/apperr"
	"github.com/fotofolio/backend/pkg/response"
)

// RateLimit applies a per-client-IP rate limit backed by Redis. The rate
// uses limiter's formatted notation, for example "300-M" for 300 requests
// per minute.
func RateLimit(client *redis.Client, formatted string, logger *zap.Logger) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "ratelimit",
	})
	if err != nil {
		return nil, err
	}

	return mgin.NewMiddleware(limiter.New(store, rate),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// Redis being down should not take the API with it.
			logger.Warn("rate limit store error", zap.Error(err))
			c.Next()
		}),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			response.AbortError(c, apperr.RateLimit("too many requests, slow down"))
		}),
	), nil
}
