package grpc

import (
	"context"
	"errors"

	"github.com/molalign8468/full-stack-nft-marketplace/node/authn"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error represents an error that can be converted to a gRPC error
type Error interface {
	error
	ToGRPCError() error
}

// ErrorInterceptor converts handler errors into gRPC status errors.
func ErrorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, toGRPCError(err)
		}
		return resp, nil
	}
}

// StreamErrorInterceptor converts stream handler errors into gRPC status errors.
func StreamErrorInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return toGRPCError(handler(srv, ss))
	}
}

// toGRPCError converts any error to an appropriate gRPC error. Ledger rejections keep their
// reason as the status message.
func toGRPCError(err error) error {
	if err == nil {
		return nil
	}

	if grpcErr, ok := err.(Error); ok {
		return grpcErr.ToGRPCError()
	}

	if revert, ok := chain.AsRevert(err); ok {
		return status.Error(revert.Kind.Code(), revert.Reason)
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	switch {
	case errors.Is(err, authn.ErrNoSession):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrInvalidPublicKeyFormat),
		errors.Is(err, ErrUnsupportedChallengeVersion),
		errors.Is(err, ErrUnsupportedChallengeProtectionVersion),
		errors.Is(err, ErrPublicKeyMismatch),
		errors.Is(err, ErrMalformedSignature):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrChallengeExpired),
		errors.Is(err, ErrInvalidChallengeHmac),
		errors.Is(err, ErrInvalidSignature):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}

	// Default to Internal error
	return status.Error(codes.Internal, err.Error())
}
