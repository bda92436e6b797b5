package interceptors

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/narwhalmedia/wrongopinions/pkg/interfaces"
)

// StreamLoggingInterceptor logs streaming RPC calls. Health watches are the
// only streams served, so successful ones are logged at debug.
func StreamLoggingInterceptor(logger interfaces.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()

		err := handler(srv, ss)

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
			interfaces.Any("server_stream", info.IsServerStream),
		}

		// Canceled is how every watch ends when the client hangs up
		if err != nil && code != codes.Canceled {
			fields = append(fields, interfaces.Error(err))
			logger.Error("gRPC stream failed", fields...)
		} else {
			logger.Debug("gRPC stream closed", fields...)
		}

		return err
	}
}
