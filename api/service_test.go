package api

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

type stubAuthnServer struct {
	UnimplementedAuthnServiceServer
}

func (stubAuthnServer) GetChallenge(_ context.Context, req *GetChallengeRequest) (*GetChallengeResponse, error) {
	return &GetChallengeResponse{
		ProtectedChallenge: &ProtectedChallenge{Challenge: &Challenge{PublicKey: req.PublicKey}},
	}, nil
}

func decodeInto(raw string) func(any) error {
	return func(v any) error { return json.Unmarshal([]byte(raw), v) }
}

func TestUnaryHandler(t *testing.T) {
	handler := AuthnService_ServiceDesc.Methods[0].Handler
	dec := decodeInto(`{"publicKey":"AgE="}`)

	t.Run("without interceptor", func(t *testing.T) {
		out, err := handler(stubAuthnServer{}, context.Background(), dec, nil)
		require.NoError(t, err)
		resp, ok := out.(*GetChallengeResponse)
		require.True(t, ok)
		assert.Equal(t, []byte{0x02, 0x01}, resp.ProtectedChallenge.Challenge.PublicKey)
	})

	t.Run("with interceptor", func(t *testing.T) {
		var seen string
		interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
			seen = info.FullMethod
			_, ok := req.(*GetChallengeRequest)
			require.True(t, ok)
			return next(ctx, req)
		}
		out, err := handler(stubAuthnServer{}, context.Background(), dec, interceptor)
		require.NoError(t, err)
		assert.Equal(t, AuthnService_GetChallenge_FullMethodName, seen)
		assert.IsType(t, &GetChallengeResponse{}, out)
	})

	t.Run("undecodable request", func(t *testing.T) {
		_, err := handler(stubAuthnServer{}, context.Background(), decodeInto(`{`), nil)
		require.Error(t, err)
	})
}

func TestVerifyChallengeRequestValidate(t *testing.T) {
	valid := func() *VerifyChallengeRequest {
		return &VerifyChallengeRequest{
			ProtectedChallenge: &ProtectedChallenge{Challenge: &Challenge{}},
			Signature:          []byte{0x30},
			PublicKey:          []byte{0x02},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(r *VerifyChallengeRequest)
	}{
		{name: "no protected challenge", mutate: func(r *VerifyChallengeRequest) { r.ProtectedChallenge = nil }},
		{name: "no challenge", mutate: func(r *VerifyChallengeRequest) { r.ProtectedChallenge.Challenge = nil }},
		{name: "no signature", mutate: func(r *VerifyChallengeRequest) { r.Signature = nil }},
		{name: "no public key", mutate: func(r *VerifyChallengeRequest) { r.PublicKey = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			assert.Error(t, req.Validate())
		})
	}
}
