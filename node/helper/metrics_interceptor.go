package helper

import (
	"context"
	"time"

	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/observability"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// MetricsInterceptor records the count, latency and status code of every unary call, and
// the kind of every ledger rejection.
func MetricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	observability.RecordGRPCRequest(info.FullMethod, code.String(), time.Since(start))
	if kind := chain.KindFromCode(code); kind != 0 {
		observability.RecordRevert(kind.String())
	}
	return resp, err
}
