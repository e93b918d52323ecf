package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Receiver is implemented by contracts that accept native currency.
type Receiver interface {
	Receive(f *Frame) error
}

// Frame is the execution context of one contract call: who called, which contract runs and
// how much value came with the call.
type Frame struct {
	tx     *Tx
	Caller common.Address
	Self   common.Address
	Origin common.Address
	Value  *big.Int
	depth  int
}

// Tx returns the ledger transaction the frame runs in.
func (f *Frame) Tx() *Tx {
	return f.tx
}

// Context returns the context of the surrounding ledger transaction.
func (f *Frame) Context() context.Context {
	return f.tx.ctx
}

// Depth returns the call depth, 1 for a top-level call.
func (f *Frame) Depth() int {
	return f.depth
}

// Balance returns the native balance of the running contract.
func (f *Frame) Balance() (*big.Int, error) {
	return f.tx.BalanceOf(f.Self)
}

// Call invokes fn as contract to, with this contract as caller and value attached.
// If fn fails, every effect of the call is undone and the error returned; the caller may
// propagate it or carry on.
func (f *Frame) Call(to common.Address, value *big.Int, fn func(cf *Frame) error) error {
	if f.depth >= MaxCallDepth {
		return ErrCallDepth
	}
	if value == nil {
		value = new(big.Int)
	}
	return f.tx.atomic(func() error {
		if err := f.tx.move(f.Self, to, value); err != nil {
			return err
		}
		return fn(&Frame{
			tx:     f.tx,
			Caller: f.Self,
			Self:   to,
			Origin: f.Origin,
			Value:  value,
			depth:  f.depth + 1,
		})
	})
}

// Send transfers amount of native currency to to. Contracts receive it through their
// Receiver hook and may reject it; contracts without the hook always reject.
func (f *Frame) Send(to common.Address, amount *big.Int) error {
	return f.Call(to, amount, func(cf *Frame) error {
		code, ok := cf.tx.Code(to)
		if !ok {
			return nil
		}
		receiver, ok := code.(Receiver)
		if !ok {
			return ErrNotPayable
		}
		return receiver.Receive(cf)
	})
}

// NonReentrant marks the running contract as entered until release is called. A second
// entry into the same contract within the ledger transaction fails with ErrReentrantCall.
func (f *Frame) NonReentrant() (release func(), err error) {
	if f.tx.guards[f.Self] {
		return nil, ErrReentrantCall
	}
	f.tx.guards[f.Self] = true
	self := f.Self
	return func() {
		delete(f.tx.guards, self)
	}, nil
}
