package logger

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// RequestIDHeader is propagated from the client when present.
const RequestIDHeader = "X-Request-ID"

// GinMiddleware logs every HTTP request and stores a request-scoped logger
// on the request context.
func GinMiddleware(logger interfaces.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := WithRequestID(c.Request.Context(), requestID)
		reqLogger := logger.WithContext(ctx)
		c.Request = c.Request.WithContext(WithContext(ctx, reqLogger))

		c.Next()

		fields := []interfaces.Field{
			interfaces.String("method", c.Request.Method),
			interfaces.String("path", c.FullPath()),
			interfaces.Int("status", c.Writer.Status()),
			interfaces.Any("duration_ms", time.Since(start).Milliseconds()),
			interfaces.String("client_ip", c.ClientIP()),
		}

		switch {
		case c.Writer.Status() >= 500:
			if len(c.Errors) > 0 {
				fields = append(fields, interfaces.Error(c.Errors.Last().Err))
			}
			reqLogger.Error("HTTP request failed", fields...)
		case c.Writer.Status() >= 400:
			reqLogger.Warn("HTTP request rejected", fields...)
		default:
			reqLogger.Info("HTTP request completed", fields...)
		}
	}
}

// UnaryServerInterceptor returns a gRPC unary server interceptor for logging
func UnaryServerInterceptor(logger interfaces.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		ctx = WithContext(ctx, logger)
		resp, err := handler(ctx, req)

		code := codes.OK
		if err != nil {
			if s, ok := status.FromError(err); ok {
				code = s.Code()
			} else {
				code = codes.Unknown
			}
		}

		fields := []interfaces.Field{
			interfaces.String("method", info.FullMethod),
			interfaces.Any("duration_ms", time.Since(start).Milliseconds()),
			interfaces.String("status", code.String()),
		}

		if err != nil {
			fields = append(fields, interfaces.Error(err))
			logger.Error("gRPC request failed", fields...)
		} else {
			logger.Debug("gRPC request completed", fields...)
		}

		return resp, err
	}
}
