package chain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Event is a typed log payload. Signature uses the Solidity event form, e.g.
// "Transfer(address,address,uint256)".
type Event interface {
	Signature() string
}

// Log is an event emitted by a contract during a committed call.
type Log struct {
	Block    uint64          `json:"block"`
	Index    uint64          `json:"index"`
	TxHash   common.Hash     `json:"txHash"`
	Contract common.Address  `json:"contract"`
	Name     string          `json:"name"`
	Topic    common.Hash     `json:"topic"`
	Data     json.RawMessage `json:"data"`
}

// Decode unmarshals the payload of the log into v.
func (l *Log) Decode(v any) error {
	return json.Unmarshal(l.Data, v)
}

// EventName returns the name part of an event signature.
func EventName(e Event) string {
	sig := e.Signature()
	if i := strings.IndexByte(sig, '('); i >= 0 {
		return sig[:i]
	}
	return sig
}

// Topic returns the keccak256 hash of the event signature.
func Topic(e Event) common.Hash {
	return crypto.Keccak256Hash([]byte(e.Signature()))
}

// Emit records an event for the running contract. It is discarded if the call reverts.
func (f *Frame) Emit(e Event) error {
	t := f.tx
	if t.current == nil {
		return errors.New("event emitted outside of a call")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", EventName(e), err)
	}
	l := &Log{
		Block:    t.current.block,
		Index:    uint64(len(t.logs) - t.current.firstLog),
		TxHash:   t.current.hash,
		Contract: f.Self,
		Name:     EventName(e),
		Topic:    Topic(e),
		Data:     data,
	}
	err = t.Exec(EventsTable, t.builder.Insert(EventsTable).
		Columns("block", "log_index", "tx_hash", "contract", "name", "topic", "data").
		Values(int64(l.Block), int64(l.Index), l.TxHash.Hex(), AddressKey(l.Contract), l.Name, l.Topic.Hex(), string(l.Data)))
	if err != nil {
		return err
	}
	t.logs = append(t.logs, l)
	return nil
}

// LogFilter selects committed logs.
type LogFilter struct {
	FromBlock uint64
	Contract  *common.Address
	Name      string
	Limit     int
}

// Match reports whether l passes the filter.
func (lf LogFilter) Match(l *Log) bool {
	if l.Block < lf.FromBlock {
		return false
	}
	if lf.Contract != nil && *lf.Contract != l.Contract {
		return false
	}
	if lf.Name != "" && lf.Name != l.Name {
		return false
	}
	return true
}

// Logs returns stored logs matching the filter in block order.
func (t *Tx) Logs(filter LogFilter) ([]*Log, error) {
	preds := []*entsql.Predicate{entsql.GTE("block", int64(filter.FromBlock))}
	if filter.Contract != nil {
		preds = append(preds, entsql.EQ("contract", AddressKey(*filter.Contract)))
	}
	if filter.Name != "" {
		preds = append(preds, entsql.EQ("name", filter.Name))
	}
	q := t.builder.Select("block", "log_index", "tx_hash", "contract", "name", "topic", "data").
		From(t.builder.Table(EventsTable)).
		Where(entsql.And(preds...)).
		OrderBy("block", "log_index")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var logs []*Log
	err := t.Query(EventsTable, q, func(row Scanner) error {
		var (
			block, index                        int64
			txHash, contract, name, topic, data string
		)
		if err := row.Scan(&block, &index, &txHash, &contract, &name, &topic, &data); err != nil {
			return err
		}
		logs = append(logs, &Log{
			Block:    uint64(block),
			Index:    uint64(index),
			TxHash:   common.HexToHash(txHash),
			Contract: common.HexToAddress(contract),
			Name:     name,
			Topic:    common.HexToHash(topic),
			Data:     json.RawMessage(data),
		})
		return nil
	})
	return logs, err
}
