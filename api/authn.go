package api

import (
	"context"
	"encoding/json"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Challenge is issued to one key for one chain. Address is the ledger account of PublicKey.
type Challenge struct {
	Version   int32  `json:"version"`
	ChainID   uint64 `json:"chainId"`
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"`
	Nonce     []byte `json:"nonce"`
	PublicKey []byte `json:"publicKey"`
}

// ProtectedChallenge is a challenge with the server's HMAC over its encoding.
type ProtectedChallenge struct {
	Version    int32      `json:"version"`
	Challenge  *Challenge `json:"challenge"`
	ServerHmac []byte     `json:"serverHmac"`
}

type GetChallengeRequest struct {
	PublicKey []byte `json:"publicKey"`
}

type GetChallengeResponse struct {
	ProtectedChallenge *ProtectedChallenge `json:"protectedChallenge"`
}

type VerifyChallengeRequest struct {
	ProtectedChallenge *ProtectedChallenge `json:"protectedChallenge"`
	Signature          []byte              `json:"signature"`
	PublicKey          []byte              `json:"publicKey"`
}

type VerifyChallengeResponse struct {
	SessionToken        string `json:"sessionToken"`
	ExpirationTimestamp int64  `json:"expirationTimestamp"`
	// Address is the ledger account the session acts for.
	Address string `json:"address"`
}

// ProtectedSession is the session token payload together with its HMAC.
type ProtectedSession struct {
	Version int32    `json:"version"`
	Session *Session `json:"session"`
	Hmac    []byte   `json:"hmac"`
}

type Session struct {
	Version             int32  `json:"version"`
	ChainID             uint64 `json:"chainId"`
	ExpirationTimestamp int64  `json:"expirationTimestamp"`
	Nonce               []byte `json:"nonce"`
	PublicKey           []byte `json:"publicKey"`
}

func (r *GetChallengeRequest) Validate() error {
	if len(r.PublicKey) == 0 {
		return errors.New("public key is required")
	}
	return nil
}

func (r *VerifyChallengeRequest) Validate() error {
	switch {
	case r.ProtectedChallenge == nil:
		return errors.New("protected challenge is required")
	case r.ProtectedChallenge.Challenge == nil:
		return errors.New("challenge is required")
	case len(r.Signature) == 0:
		return errors.New("signature is required")
	case len(r.PublicKey) == 0:
		return errors.New("public key is required")
	}
	return nil
}

const (
	AuthnService_GetChallenge_FullMethodName    = "/marketplace.AuthnService/GetChallenge"
	AuthnService_VerifyChallenge_FullMethodName = "/marketplace.AuthnService/VerifyChallenge"
)

// AuthnServiceClient is the client API for AuthnService.
type AuthnServiceClient interface {
	GetChallenge(ctx context.Context, in *GetChallengeRequest, opts ...grpc.CallOption) (*GetChallengeResponse, error)
	VerifyChallenge(ctx context.Context, in *VerifyChallengeRequest, opts ...grpc.CallOption) (*VerifyChallengeResponse, error)
}

type authnServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthnServiceClient(cc grpc.ClientConnInterface) AuthnServiceClient {
	return &authnServiceClient{cc}
}

func (c *authnServiceClient) GetChallenge(ctx context.Context, in *GetChallengeRequest, opts ...grpc.CallOption) (*GetChallengeResponse, error) {
	return invoke[GetChallengeResponse](ctx, c.cc, AuthnService_GetChallenge_FullMethodName, in, opts)
}

func (c *authnServiceClient) VerifyChallenge(ctx context.Context, in *VerifyChallengeRequest, opts ...grpc.CallOption) (*VerifyChallengeResponse, error) {
	return invoke[VerifyChallengeResponse](ctx, c.cc, AuthnService_VerifyChallenge_FullMethodName, in, opts)
}

// AuthnServiceServer is the server API for AuthnService.
type AuthnServiceServer interface {
	GetChallenge(context.Context, *GetChallengeRequest) (*GetChallengeResponse, error)
	VerifyChallenge(context.Context, *VerifyChallengeRequest) (*VerifyChallengeResponse, error)
}

// UnimplementedAuthnServiceServer can be embedded to have forward compatible implementations.
type UnimplementedAuthnServiceServer struct{}

func (UnimplementedAuthnServiceServer) GetChallenge(context.Context, *GetChallengeRequest) (*GetChallengeResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetChallenge not implemented")
}

func (UnimplementedAuthnServiceServer) VerifyChallenge(context.Context, *VerifyChallengeRequest) (*VerifyChallengeResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method VerifyChallenge not implemented")
}

func RegisterAuthnServiceServer(s grpc.ServiceRegistrar, srv AuthnServiceServer) {
	s.RegisterService(&AuthnService_ServiceDesc, srv)
}

// AuthnService_ServiceDesc is the grpc.ServiceDesc for AuthnService.
var AuthnService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "marketplace.AuthnService",
	HandlerType: (*AuthnServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetChallenge",
			Handler: unaryHandler(AuthnService_GetChallenge_FullMethodName, func(srv any, ctx context.Context, in *GetChallengeRequest) (*GetChallengeResponse, error) {
				return srv.(AuthnServiceServer).GetChallenge(ctx, in)
			}),
		},
		{
			MethodName: "VerifyChallenge",
			Handler: unaryHandler(AuthnService_VerifyChallenge_FullMethodName, func(srv any, ctx context.Context, in *VerifyChallengeRequest) (*VerifyChallengeResponse, error) {
				return srv.(AuthnServiceServer).VerifyChallenge(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/authn",
}

// SigningBytes returns the encoding of the challenge that the server MACs and the client signs.
func (c *Challenge) SigningBytes() ([]byte, error) {
	return json.Marshal(c)
}
