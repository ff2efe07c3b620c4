package testutil

import (
	"fmt"
	"sort"

	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-protos-go/ledger/queryresult"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// LedgerStub is an in-memory chaincode stub for contract and store tests. It
// implements the subset of shim.ChaincodeStubInterface the voting system
// touches: state CRUD, range scans and the deterministic transaction
// timestamp. Anything else panics through the embedded interface.
type LedgerStub struct {
	shim.ChaincodeStubInterface

	State  map[string][]byte
	TxTime int64
}

// NewLedgerStub returns an empty ledger pinned to a fixed transaction time.
// Tests move the clock with SetTxTime.
func NewLedgerStub() *LedgerStub {
	return &LedgerStub{
		State:  make(map[string][]byte),
		TxTime: 1700000000,
	}
}

// SetTxTime pins the timestamp of subsequent transactions, in epoch seconds.
func (s *LedgerStub) SetTxTime(seconds int64) {
	s.TxTime = seconds
}

func (s *LedgerStub) GetState(key string) ([]byte, error) {
	data, ok := s.State[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *LedgerStub) PutState(key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	s.State[key] = stored
	return nil
}

func (s *LedgerStub) DelState(key string) error {
	delete(s.State, key)
	return nil
}

func (s *LedgerStub) GetTxTimestamp() (*timestamppb.Timestamp, error) {
	return &timestamppb.Timestamp{Seconds: s.TxTime}, nil
}

// GetStateByRange returns a closed iterator over [startKey, endKey) in key
// order, matching the half-open contract of the real stub.
func (s *LedgerStub) GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
	keys := make([]string, 0, len(s.State))
	for key := range s.State {
		if key >= startKey && (endKey == "" || key < endKey) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	kvs := make([]*queryresult.KV, 0, len(keys))
	for _, key := range keys {
		kvs = append(kvs, &queryresult.KV{Key: key, Value: s.State[key]})
	}
	return &stateIterator{kvs: kvs}, nil
}

type stateIterator struct {
	kvs    []*queryresult.KV
	pos    int
	closed bool
}

func (it *stateIterator) HasNext() bool {
	return !it.closed && it.pos < len(it.kvs)
}

func (it *stateIterator) Next() (*queryresult.KV, error) {
	if !it.HasNext() {
		return nil, fmt.Errorf("iterator exhausted")
	}
	kv := it.kvs[it.pos]
	it.pos++
	return kv, nil
}

func (it *stateIterator) Close() error {
	it.closed = true
	return nil
}

// TransactionContext is the minimal contractapi context wrapping a LedgerStub.
type TransactionContext struct {
	Stub *LedgerStub
}

func NewTransactionContext() (*TransactionContext, *LedgerStub) {
	stub := NewLedgerStub()
	return &TransactionContext{Stub: stub}, stub
}

func (c *TransactionContext) GetStub() shim.ChaincodeStubInterface {
	return c.Stub
}

func (c *TransactionContext) GetClientIdentity() cid.ClientIdentity {
	return nil
}
