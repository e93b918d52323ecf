package stream_test

import (
	"context"
	"errors"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
	"github.com/molalign8468/full-stack-nft-marketplace/node/stream"
	testutil "github.com/molalign8468/full-stack-nft-marketplace/test_util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	contractA = ethcommon.HexToAddress("0x000000000000000000000000000000000000000a")
	contractB = ethcommon.HexToAddress("0x000000000000000000000000000000000000000b")
)

func receive(t *testing.T, sub *stream.Subscription) *chain.Log {
	t.Helper()
	select {
	case l := <-sub.Events():
		return l
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestPublishFilters(t *testing.T) {
	router := stream.NewEventRouter(16)

	all := router.Subscribe(chain.LogFilter{})
	defer all.Close()
	onlyA := router.Subscribe(chain.LogFilter{Contract: &contractA})
	defer onlyA.Close()
	onlyTransfers := router.Subscribe(chain.LogFilter{Name: "Transfer"})
	defer onlyTransfers.Close()
	assert.Equal(t, 3, router.Subscribers())

	router.Publish([]*chain.Log{
		{Block: 1, Contract: contractA, Name: "Approval"},
		{Block: 1, Index: 1, Contract: contractB, Name: "Transfer"},
	})

	assert.Equal(t, "Approval", receive(t, all).Name)
	assert.Equal(t, "Transfer", receive(t, all).Name)
	assert.Equal(t, contractA, receive(t, onlyA).Contract)
	assert.Equal(t, contractB, receive(t, onlyTransfers).Contract)
	assert.Empty(t, onlyA.Events())
	assert.Empty(t, onlyTransfers.Events())
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	router := stream.NewEventRouter(1)
	sub := router.Subscribe(chain.LogFilter{})

	router.Publish([]*chain.Log{{Block: 1}, {Block: 2}})

	select {
	case <-sub.Dropped():
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber was not dropped")
	}
	assert.Equal(t, 0, router.Subscribers())
}

func TestSubscribeToEvents(t *testing.T) {
	router := stream.NewEventRouter(16)
	ctx, cancel := context.WithCancel(context.Background())

	received := make(chan *chain.Log, 4)
	done := make(chan error, 1)
	go func() {
		done <- router.SubscribeToEvents(ctx, chain.LogFilter{Name: "ItemSold"}, func(l *chain.Log) error {
			received <- l
			return nil
		})
	}()
	require.Eventually(t, func() bool { return router.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

	router.Publish([]*chain.Log{{Block: 3, Name: "ItemListed"}, {Block: 4, Name: "ItemSold"}})
	select {
	case l := <-received:
		assert.Equal(t, uint64(4), l.Block)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, router.Subscribers())
}

func TestSubscribeToEventsSendErrors(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
		wantErr bool
	}{
		{name: "closed stream", sendErr: status.Error(codes.Canceled, "gone"), wantErr: false},
		{name: "unexpected", sendErr: errors.New("boom"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := stream.NewEventRouter(16)
			done := make(chan error, 1)
			go func() {
				done <- router.SubscribeToEvents(context.Background(), chain.LogFilter{}, func(*chain.Log) error {
					return tt.sendErr
				})
			}()
			require.Eventually(t, func() bool { return router.Subscribers() == 1 }, 5*time.Second, 10*time.Millisecond)

			router.Publish([]*chain.Log{{Block: 1}})
			err := <-done
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRouterReceivesCommittedLogsOnly(t *testing.T) {
	m := testutil.NewMarketplace(t, collection.DefaultParams())
	router := stream.NewEventRouter(16)
	router.Attach(m.Engine)
	sub := router.Subscribe(chain.LogFilter{Name: "ApprovalForAll"})
	defer sub.Close()

	ctx := context.Background()
	setApproval := func(f *chain.Frame) error {
		return m.Collection.SetApprovalForAll(f, m.Market.Address(), true)
	}

	_, err := m.Engine.Transact(ctx, m.Seller.Address, m.Collection.Address(), nil, "setApprovalForAll", setApproval)
	require.NoError(t, err)
	l := receive(t, sub)
	assert.Equal(t, m.Collection.Address(), l.Contract)

	var event collection.ApprovalForAll
	require.NoError(t, l.Decode(&event))
	assert.Equal(t, m.Seller.Address, event.Owner)
	assert.True(t, event.Approved)

	err = m.Engine.Execute(ctx, func(tx *chain.Tx) error {
		if _, err := tx.Transact(m.Buyer.Address, m.Collection.Address(), nil, "setApprovalForAll", setApproval); err != nil {
			return err
		}
		return errors.New("abandon")
	})
	require.Error(t, err)
	assert.Empty(t, sub.Events())
}
