package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "go-cover-resolver/internal/errors"
	"go-cover-resolver/internal/logger"
	"go-cover-resolver/internal/service"
	"go-cover-resolver/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// StatsProvider reports cover outcome counters for the health endpoint.
type StatsProvider interface {
	Stats() models.CoverStats
}

// Options configures the HTTP handler.
type Options struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Stats              StatsProvider
}

func NewHandler(covers service.CoverService, opts Options) http.Handler {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(
		requestLogger(),
		gin.CustomRecovery(recoverPanic),
		requestSizeLimiter(opts.MaxRequestBodySize),
	)

	r.GET("/", serviceInfo)
	r.POST("/generate-cover", generateCover(covers, opts.RequestTimeout))
	r.GET("/test", serviceTest(covers))
	r.GET("/health", healthCheck(covers, opts.Stats))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, models.ErrorResponse{Error: "Method not allowed"})
	})

	return r
}

func serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, models.InfoResponse{
		Message: "Cover generation API is running!",
		Endpoints: models.EndpointIndex{
			GenerateCover: "POST /generate-cover",
			Test:          "GET /test",
			Health:        "GET /health",
			Example: models.CoverExample{
				Title:       "Book title",
				Description: "Book description",
			},
		},
	})
}

func generateCover(covers service.CoverService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Covers the body read as well; the service gives up if it expires.
		ctx := c.Request.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respondError(c, apperrors.NewPayloadTooLargeError(
					fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit), err))
				return
			}
			respondError(c, apperrors.NewInvalidRequestError(service.MsgJSONNotProvided, err))
			return
		}

		resp, err := covers.GenerateCoverJSON(ctx, body)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

func serviceTest(covers service.CoverService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.TestResponse{
			Message:     "Service operational",
			TotalImages: covers.TotalImages(),
		})
	}
}

func healthCheck(covers service.CoverService, stats StatsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:      "available",
			Version:     Version,
			Time:        time.Now().UTC().Format(time.RFC3339),
			TotalImages: covers.TotalImages(),
		}
		if stats != nil {
			resp.Covers = stats.Stats()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"user_agent":  c.Request.UserAgent(),
			"ip":          c.ClientIP(),
		}).Debug("Request handled")
	}
}

func recoverPanic(c *gin.Context, recovered any) {
	respondError(c, apperrors.NewInternalError(fmt.Sprint(recovered), nil))
}

// respondError converts err into the JSON error body. Only internal
// errors carry a status field.
func respondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.NewInternalError(err.Error(), err)
	}

	body := models.ErrorResponse{Error: appErr.Message}
	if appErr.Type == apperrors.ErrorTypeInternal {
		body = models.ErrorResponse{
			Error:  "Internal error: " + appErr.Message,
			Status: models.StatusError,
		}
	}

	entry := logger.WithFields(logrus.Fields{
		"error_type":  appErr.Type,
		"status_code": appErr.StatusCode,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if appErr.Cause != nil {
		entry = entry.WithError(appErr.Cause)
	}
	if appErr.StatusCode >= http.StatusInternalServerError {
		entry.Error("Error generating cover: " + appErr.Message)
	} else {
		entry.Warn("Request failed: " + appErr.Message)
	}

	c.AbortWithStatusJSON(appErr.StatusCode, body)
}
