package wallet

import (
	"fmt"

	"github.com/molalign8468/full-stack-nft-marketplace/node/chain"
	"google.golang.org/grpc/status"
)

// callError rebuilds ledger rejections from the status the node answered with, so callers
// can match them against the sentinels of the contract packages with errors.Is.
func callError(action string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if kind := chain.KindFromCode(st.Code()); kind != 0 {
		return fmt.Errorf("failed to %s: %w", action, chain.Revert(kind, st.Message()))
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
