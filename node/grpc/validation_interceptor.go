package grpc

import (
	"context"

	"github.com/molalign8468/full-stack-nft-marketplace/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func ValidationInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		// Validate the request if it implements Validate().
		if v, ok := req.(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
			}
		}

		// Pass the request on down the chain.
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, err
		}

		// Validate the response if it implements Validate().
		if v, ok := resp.(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, status.Errorf(codes.Internal, "invalid response: %v", err)
			}
		}

		return resp, nil
	}
}

// StreamValidationInterceptor validates the request of server streaming calls.
func StreamValidationInterceptor() grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		return handler(srv, &validatingStream{ServerStream: ss})
	}
}

type validatingStream struct {
	grpc.ServerStream
}

func (s *validatingStream) RecvMsg(m interface{}) error {
	if err := s.ServerStream.RecvMsg(m); err != nil {
		return err
	}
	if v, ok := m.(api.Validator); ok {
		if err := v.Validate(); err != nil {
			return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
		}
	}
	return nil
}
