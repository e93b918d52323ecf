package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	LedgerService_Mint_FullMethodName              = "/marketplace.LedgerService/Mint"
	LedgerService_SafeMint_FullMethodName          = "/marketplace.LedgerService/SafeMint"
	LedgerService_FlipSaleState_FullMethodName     = "/marketplace.LedgerService/FlipSaleState"
	LedgerService_Withdraw_FullMethodName          = "/marketplace.LedgerService/Withdraw"
	LedgerService_Approve_FullMethodName           = "/marketplace.LedgerService/Approve"
	LedgerService_SetApprovalForAll_FullMethodName = "/marketplace.LedgerService/SetApprovalForAll"
	LedgerService_TransferFrom_FullMethodName      = "/marketplace.LedgerService/TransferFrom"
	LedgerService_ListItem_FullMethodName          = "/marketplace.LedgerService/ListItem"
	LedgerService_BuyItem_FullMethodName           = "/marketplace.LedgerService/BuyItem"
	LedgerService_CancelListing_FullMethodName     = "/marketplace.LedgerService/CancelListing"
	LedgerService_GetCollection_FullMethodName     = "/marketplace.LedgerService/GetCollection"
	LedgerService_GetToken_FullMethodName          = "/marketplace.LedgerService/GetToken"
	LedgerService_BalanceOf_FullMethodName         = "/marketplace.LedgerService/BalanceOf"
	LedgerService_IsApprovedForAll_FullMethodName  = "/marketplace.LedgerService/IsApprovedForAll"
	LedgerService_SupportsInterface_FullMethodName = "/marketplace.LedgerService/SupportsInterface"
	LedgerService_GetAccount_FullMethodName        = "/marketplace.LedgerService/GetAccount"
	LedgerService_GetMarket_FullMethodName         = "/marketplace.LedgerService/GetMarket"
	LedgerService_GetListing_FullMethodName        = "/marketplace.LedgerService/GetListing"
	LedgerService_GetEvents_FullMethodName         = "/marketplace.LedgerService/GetEvents"
	LedgerService_SubscribeEvents_FullMethodName   = "/marketplace.LedgerService/SubscribeEvents"
)

// LedgerServiceClient is the client API for LedgerService.
type LedgerServiceClient interface {
	Mint(ctx context.Context, in *MintRequest, opts ...grpc.CallOption) (*MintResponse, error)
	SafeMint(ctx context.Context, in *SafeMintRequest, opts ...grpc.CallOption) (*SafeMintResponse, error)
	FlipSaleState(ctx context.Context, in *FlipSaleStateRequest, opts ...grpc.CallOption) (*FlipSaleStateResponse, error)
	Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*WithdrawResponse, error)
	Approve(ctx context.Context, in *ApproveRequest, opts ...grpc.CallOption) (*TxResponse, error)
	SetApprovalForAll(ctx context.Context, in *SetApprovalForAllRequest, opts ...grpc.CallOption) (*TxResponse, error)
	TransferFrom(ctx context.Context, in *TransferFromRequest, opts ...grpc.CallOption) (*TxResponse, error)
	ListItem(ctx context.Context, in *ListItemRequest, opts ...grpc.CallOption) (*ListItemResponse, error)
	BuyItem(ctx context.Context, in *BuyItemRequest, opts ...grpc.CallOption) (*TxResponse, error)
	CancelListing(ctx context.Context, in *CancelListingRequest, opts ...grpc.CallOption) (*TxResponse, error)
	GetCollection(ctx context.Context, in *GetCollectionRequest, opts ...grpc.CallOption) (*Collection, error)
	GetToken(ctx context.Context, in *GetTokenRequest, opts ...grpc.CallOption) (*Token, error)
	BalanceOf(ctx context.Context, in *BalanceOfRequest, opts ...grpc.CallOption) (*BalanceOfResponse, error)
	IsApprovedForAll(ctx context.Context, in *IsApprovedForAllRequest, opts ...grpc.CallOption) (*IsApprovedForAllResponse, error)
	SupportsInterface(ctx context.Context, in *SupportsInterfaceRequest, opts ...grpc.CallOption) (*SupportsInterfaceResponse, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*Account, error)
	GetMarket(ctx context.Context, in *GetMarketRequest, opts ...grpc.CallOption) (*Market, error)
	GetListing(ctx context.Context, in *GetListingRequest, opts ...grpc.CallOption) (*Listing, error)
	GetEvents(ctx context.Context, in *GetEventsRequest, opts ...grpc.CallOption) (*GetEventsResponse, error)
	SubscribeEvents(ctx context.Context, in *SubscribeEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error)
}

type ledgerServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewLedgerServiceClient(cc grpc.ClientConnInterface) LedgerServiceClient {
	return &ledgerServiceClient{cc}
}

func (c *ledgerServiceClient) Mint(ctx context.Context, in *MintRequest, opts ...grpc.CallOption) (*MintResponse, error) {
	return invoke[MintResponse](ctx, c.cc, LedgerService_Mint_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) SafeMint(ctx context.Context, in *SafeMintRequest, opts ...grpc.CallOption) (*SafeMintResponse, error) {
	return invoke[SafeMintResponse](ctx, c.cc, LedgerService_SafeMint_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) FlipSaleState(ctx context.Context, in *FlipSaleStateRequest, opts ...grpc.CallOption) (*FlipSaleStateResponse, error) {
	return invoke[FlipSaleStateResponse](ctx, c.cc, LedgerService_FlipSaleState_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*WithdrawResponse, error) {
	return invoke[WithdrawResponse](ctx, c.cc, LedgerService_Withdraw_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) Approve(ctx context.Context, in *ApproveRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	return invoke[TxResponse](ctx, c.cc, LedgerService_Approve_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) SetApprovalForAll(ctx context.Context, in *SetApprovalForAllRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	return invoke[TxResponse](ctx, c.cc, LedgerService_SetApprovalForAll_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) TransferFrom(ctx context.Context, in *TransferFromRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	return invoke[TxResponse](ctx, c.cc, LedgerService_TransferFrom_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) ListItem(ctx context.Context, in *ListItemRequest, opts ...grpc.CallOption) (*ListItemResponse, error) {
	return invoke[ListItemResponse](ctx, c.cc, LedgerService_ListItem_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) BuyItem(ctx context.Context, in *BuyItemRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	return invoke[TxResponse](ctx, c.cc, LedgerService_BuyItem_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) CancelListing(ctx context.Context, in *CancelListingRequest, opts ...grpc.CallOption) (*TxResponse, error) {
	return invoke[TxResponse](ctx, c.cc, LedgerService_CancelListing_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetCollection(ctx context.Context, in *GetCollectionRequest, opts ...grpc.CallOption) (*Collection, error) {
	return invoke[Collection](ctx, c.cc, LedgerService_GetCollection_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetToken(ctx context.Context, in *GetTokenRequest, opts ...grpc.CallOption) (*Token, error) {
	return invoke[Token](ctx, c.cc, LedgerService_GetToken_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) BalanceOf(ctx context.Context, in *BalanceOfRequest, opts ...grpc.CallOption) (*BalanceOfResponse, error) {
	return invoke[BalanceOfResponse](ctx, c.cc, LedgerService_BalanceOf_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) IsApprovedForAll(ctx context.Context, in *IsApprovedForAllRequest, opts ...grpc.CallOption) (*IsApprovedForAllResponse, error) {
	return invoke[IsApprovedForAllResponse](ctx, c.cc, LedgerService_IsApprovedForAll_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) SupportsInterface(ctx context.Context, in *SupportsInterfaceRequest, opts ...grpc.CallOption) (*SupportsInterfaceResponse, error) {
	return invoke[SupportsInterfaceResponse](ctx, c.cc, LedgerService_SupportsInterface_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, LedgerService_GetAccount_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetMarket(ctx context.Context, in *GetMarketRequest, opts ...grpc.CallOption) (*Market, error) {
	return invoke[Market](ctx, c.cc, LedgerService_GetMarket_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetListing(ctx context.Context, in *GetListingRequest, opts ...grpc.CallOption) (*Listing, error) {
	return invoke[Listing](ctx, c.cc, LedgerService_GetListing_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) GetEvents(ctx context.Context, in *GetEventsRequest, opts ...grpc.CallOption) (*GetEventsResponse, error) {
	return invoke[GetEventsResponse](ctx, c.cc, LedgerService_GetEvents_FullMethodName, in, opts)
}

func (c *ledgerServiceClient) SubscribeEvents(ctx context.Context, in *SubscribeEventsRequest, opts ...grpc.CallOption) (grpc.ServerStreamingClient[Event], error) {
	stream, err := c.cc.NewStream(ctx, &LedgerService_ServiceDesc.Streams[0], LedgerService_SubscribeEvents_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[SubscribeEventsRequest, Event]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// LedgerServiceServer is the server API for LedgerService.
type LedgerServiceServer interface {
	Mint(context.Context, *MintRequest) (*MintResponse, error)
	SafeMint(context.Context, *SafeMintRequest) (*SafeMintResponse, error)
	FlipSaleState(context.Context, *FlipSaleStateRequest) (*FlipSaleStateResponse, error)
	Withdraw(context.Context, *WithdrawRequest) (*WithdrawResponse, error)
	Approve(context.Context, *ApproveRequest) (*TxResponse, error)
	SetApprovalForAll(context.Context, *SetApprovalForAllRequest) (*TxResponse, error)
	TransferFrom(context.Context, *TransferFromRequest) (*TxResponse, error)
	ListItem(context.Context, *ListItemRequest) (*ListItemResponse, error)
	BuyItem(context.Context, *BuyItemRequest) (*TxResponse, error)
	CancelListing(context.Context, *CancelListingRequest) (*TxResponse, error)
	GetCollection(context.Context, *GetCollectionRequest) (*Collection, error)
	GetToken(context.Context, *GetTokenRequest) (*Token, error)
	BalanceOf(context.Context, *BalanceOfRequest) (*BalanceOfResponse, error)
	IsApprovedForAll(context.Context, *IsApprovedForAllRequest) (*IsApprovedForAllResponse, error)
	SupportsInterface(context.Context, *SupportsInterfaceRequest) (*SupportsInterfaceResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*Account, error)
	GetMarket(context.Context, *GetMarketRequest) (*Market, error)
	GetListing(context.Context, *GetListingRequest) (*Listing, error)
	GetEvents(context.Context, *GetEventsRequest) (*GetEventsResponse, error)
	SubscribeEvents(*SubscribeEventsRequest, grpc.ServerStreamingServer[Event]) error
}

// UnimplementedLedgerServiceServer can be embedded to have forward compatible implementations.
type UnimplementedLedgerServiceServer struct{}

func (UnimplementedLedgerServiceServer) Mint(context.Context, *MintRequest) (*MintResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Mint not implemented")
}

func (UnimplementedLedgerServiceServer) SafeMint(context.Context, *SafeMintRequest) (*SafeMintResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SafeMint not implemented")
}

func (UnimplementedLedgerServiceServer) FlipSaleState(context.Context, *FlipSaleStateRequest) (*FlipSaleStateResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method FlipSaleState not implemented")
}

func (UnimplementedLedgerServiceServer) Withdraw(context.Context, *WithdrawRequest) (*WithdrawResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Withdraw not implemented")
}

func (UnimplementedLedgerServiceServer) Approve(context.Context, *ApproveRequest) (*TxResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Approve not implemented")
}

func (UnimplementedLedgerServiceServer) SetApprovalForAll(context.Context, *SetApprovalForAllRequest) (*TxResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SetApprovalForAll not implemented")
}

func (UnimplementedLedgerServiceServer) TransferFrom(context.Context, *TransferFromRequest) (*TxResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method TransferFrom not implemented")
}

func (UnimplementedLedgerServiceServer) ListItem(context.Context, *ListItemRequest) (*ListItemResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListItem not implemented")
}

func (UnimplementedLedgerServiceServer) BuyItem(context.Context, *BuyItemRequest) (*TxResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method BuyItem not implemented")
}

func (UnimplementedLedgerServiceServer) CancelListing(context.Context, *CancelListingRequest) (*TxResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CancelListing not implemented")
}

func (UnimplementedLedgerServiceServer) GetCollection(context.Context, *GetCollectionRequest) (*Collection, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCollection not implemented")
}

func (UnimplementedLedgerServiceServer) GetToken(context.Context, *GetTokenRequest) (*Token, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetToken not implemented")
}

func (UnimplementedLedgerServiceServer) BalanceOf(context.Context, *BalanceOfRequest) (*BalanceOfResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method BalanceOf not implemented")
}

func (UnimplementedLedgerServiceServer) IsApprovedForAll(context.Context, *IsApprovedForAllRequest) (*IsApprovedForAllResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method IsApprovedForAll not implemented")
}

func (UnimplementedLedgerServiceServer) SupportsInterface(context.Context, *SupportsInterfaceRequest) (*SupportsInterfaceResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SupportsInterface not implemented")
}

func (UnimplementedLedgerServiceServer) GetAccount(context.Context, *GetAccountRequest) (*Account, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAccount not implemented")
}

func (UnimplementedLedgerServiceServer) GetMarket(context.Context, *GetMarketRequest) (*Market, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetMarket not implemented")
}

func (UnimplementedLedgerServiceServer) GetListing(context.Context, *GetListingRequest) (*Listing, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetListing not implemented")
}

func (UnimplementedLedgerServiceServer) GetEvents(context.Context, *GetEventsRequest) (*GetEventsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetEvents not implemented")
}

func (UnimplementedLedgerServiceServer) SubscribeEvents(*SubscribeEventsRequest, grpc.ServerStreamingServer[Event]) error {
	return status.Errorf(codes.Unimplemented, "method SubscribeEvents not implemented")
}

func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerService_ServiceDesc, srv)
}

func _LedgerService_SubscribeEvents_Handler(srv any, stream grpc.ServerStream) error {
	m := new(SubscribeEventsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(LedgerServiceServer).SubscribeEvents(m, &grpc.GenericServerStream[SubscribeEventsRequest, Event]{ServerStream: stream})
}

// LedgerService_ServiceDesc is the grpc.ServiceDesc for LedgerService.
var LedgerService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "marketplace.LedgerService",
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Mint",
			Handler: unaryHandler(LedgerService_Mint_FullMethodName, func(srv any, ctx context.Context, in *MintRequest) (*MintResponse, error) {
				return srv.(LedgerServiceServer).Mint(ctx, in)
			}),
		},
		{
			MethodName: "SafeMint",
			Handler: unaryHandler(LedgerService_SafeMint_FullMethodName, func(srv any, ctx context.Context, in *SafeMintRequest) (*SafeMintResponse, error) {
				return srv.(LedgerServiceServer).SafeMint(ctx, in)
			}),
		},
		{
			MethodName: "FlipSaleState",
			Handler: unaryHandler(LedgerService_FlipSaleState_FullMethodName, func(srv any, ctx context.Context, in *FlipSaleStateRequest) (*FlipSaleStateResponse, error) {
				return srv.(LedgerServiceServer).FlipSaleState(ctx, in)
			}),
		},
		{
			MethodName: "Withdraw",
			Handler: unaryHandler(LedgerService_Withdraw_FullMethodName, func(srv any, ctx context.Context, in *WithdrawRequest) (*WithdrawResponse, error) {
				return srv.(LedgerServiceServer).Withdraw(ctx, in)
			}),
		},
		{
			MethodName: "Approve",
			Handler: unaryHandler(LedgerService_Approve_FullMethodName, func(srv any, ctx context.Context, in *ApproveRequest) (*TxResponse, error) {
				return srv.(LedgerServiceServer).Approve(ctx, in)
			}),
		},
		{
			MethodName: "SetApprovalForAll",
			Handler: unaryHandler(LedgerService_SetApprovalForAll_FullMethodName, func(srv any, ctx context.Context, in *SetApprovalForAllRequest) (*TxResponse, error) {
				return srv.(LedgerServiceServer).SetApprovalForAll(ctx, in)
			}),
		},
		{
			MethodName: "TransferFrom",
			Handler: unaryHandler(LedgerService_TransferFrom_FullMethodName, func(srv any, ctx context.Context, in *TransferFromRequest) (*TxResponse, error) {
				return srv.(LedgerServiceServer).TransferFrom(ctx, in)
			}),
		},
		{
			MethodName: "ListItem",
			Handler: unaryHandler(LedgerService_ListItem_FullMethodName, func(srv any, ctx context.Context, in *ListItemRequest) (*ListItemResponse, error) {
				return srv.(LedgerServiceServer).ListItem(ctx, in)
			}),
		},
		{
			MethodName: "BuyItem",
			Handler: unaryHandler(LedgerService_BuyItem_FullMethodName, func(srv any, ctx context.Context, in *BuyItemRequest) (*TxResponse, error) {
				return srv.(LedgerServiceServer).BuyItem(ctx, in)
			}),
		},
		{
			MethodName: "CancelListing",
			Handler: unaryHandler(LedgerService_CancelListing_FullMethodName, func(srv any, ctx context.Context, in *CancelListingRequest) (*TxResponse, error) {
				return srv.(LedgerServiceServer).CancelListing(ctx, in)
			}),
		},
		{
			MethodName: "GetCollection",
			Handler: unaryHandler(LedgerService_GetCollection_FullMethodName, func(srv any, ctx context.Context, in *GetCollectionRequest) (*Collection, error) {
				return srv.(LedgerServiceServer).GetCollection(ctx, in)
			}),
		},
		{
			MethodName: "GetToken",
			Handler: unaryHandler(LedgerService_GetToken_FullMethodName, func(srv any, ctx context.Context, in *GetTokenRequest) (*Token, error) {
				return srv.(LedgerServiceServer).GetToken(ctx, in)
			}),
		},
		{
			MethodName: "BalanceOf",
			Handler: unaryHandler(LedgerService_BalanceOf_FullMethodName, func(srv any, ctx context.Context, in *BalanceOfRequest) (*BalanceOfResponse, error) {
				return srv.(LedgerServiceServer).BalanceOf(ctx, in)
			}),
		},
		{
			MethodName: "IsApprovedForAll",
			Handler: unaryHandler(LedgerService_IsApprovedForAll_FullMethodName, func(srv any, ctx context.Context, in *IsApprovedForAllRequest) (*IsApprovedForAllResponse, error) {
				return srv.(LedgerServiceServer).IsApprovedForAll(ctx, in)
			}),
		},
		{
			MethodName: "SupportsInterface",
			Handler: unaryHandler(LedgerService_SupportsInterface_FullMethodName, func(srv any, ctx context.Context, in *SupportsInterfaceRequest) (*SupportsInterfaceResponse, error) {
				return srv.(LedgerServiceServer).SupportsInterface(ctx, in)
			}),
		},
		{
			MethodName: "GetAccount",
			Handler: unaryHandler(LedgerService_GetAccount_FullMethodName, func(srv any, ctx context.Context, in *GetAccountRequest) (*Account, error) {
				return srv.(LedgerServiceServer).GetAccount(ctx, in)
			}),
		},
		{
			MethodName: "GetMarket",
			Handler: unaryHandler(LedgerService_GetMarket_FullMethodName, func(srv any, ctx context.Context, in *GetMarketRequest) (*Market, error) {
				return srv.(LedgerServiceServer).GetMarket(ctx, in)
			}),
		},
		{
			MethodName: "GetListing",
			Handler: unaryHandler(LedgerService_GetListing_FullMethodName, func(srv any, ctx context.Context, in *GetListingRequest) (*Listing, error) {
				return srv.(LedgerServiceServer).GetListing(ctx, in)
			}),
		},
		{
			MethodName: "GetEvents",
			Handler: unaryHandler(LedgerService_GetEvents_FullMethodName, func(srv any, ctx context.Context, in *GetEventsRequest) (*GetEventsResponse, error) {
				return srv.(LedgerServiceServer).GetEvents(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "SubscribeEvents",
			Handler:       _LedgerService_SubscribeEvents_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "marketplace/ledger",
}
