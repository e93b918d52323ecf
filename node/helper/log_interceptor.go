package helper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/molalign8468/full-stack-nft-marketplace/common/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

func requestLogger(ctx context.Context, method string) *slog.Logger {
	requestID := uuid.New().String()

	var ip string
	if p, ok := peer.FromContext(ctx); ok {
		ip = p.Addr.String()
	}

	var traceID string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if traceVals := md.Get("x-request-id"); len(traceVals) > 0 {
			traceID = traceVals[0]
		}
	}

	return slog.Default().With(
		"request_id", requestID,
		"method", method,
		"caller_ip", ip,
		"x_request_id", traceID,
	)
}

// LogInterceptor attaches a request scoped logger and a query statistics table to the
// context, and logs the outcome of every unary call.
func LogInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	logger := requestLogger(ctx, info.FullMethod)
	ctx = logging.ContextWithLogger(ctx, logger)
	ctx = logging.InitTable(ctx)

	logger.Info("grpc call started", "request", fmt.Sprintf("%T", req))

	startTime := time.Now()
	response, err := handler(ctx, req)
	duration := time.Since(startTime)

	if err != nil {
		logger.Error("error in grpc", "error", err, "duration", duration.Seconds())
	} else {
		logger.Info("grpc call successful", "response", fmt.Sprintf("%T", response), "duration", duration.Seconds())
	}
	logging.LogTable(ctx, duration)

	return response, err
}

// StreamLogInterceptor logs the lifetime of server streaming calls.
func StreamLogInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	logger := requestLogger(ss.Context(), info.FullMethod)
	logger.Info("grpc stream started")

	startTime := time.Now()
	err := handler(srv, &loggedStream{ServerStream: ss, ctx: logging.ContextWithLogger(ss.Context(), logger)})
	duration := time.Since(startTime).Seconds()

	if err != nil {
		logger.Error("error in grpc stream", "error", err, "duration", duration)
	} else {
		logger.Info("grpc stream closed", "duration", duration)
	}
	return err
}

type loggedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *loggedStream) Context() context.Context {
	return s.ctx
}
