package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"google.golang.org/protobuf/types/known/timestamppb"

	"campusvote/pkg/platform/sentinel"
)

// Cursor is a pull-based iterator over all records of one kind. It is finite
// and not restartable; callers must Close it on every exit path to release
// the underlying range query.
type Cursor struct {
	kind string
	iter shim.StateQueryIteratorInterface
	log  interface {
		Warn(msg string, args ...any)
	}
}

// Scan opens a half-open prefix range scan ["{kind}:", "{kind}:~") covering
// every id of the kind.
func (r *Repository) Scan(stub shim.ChaincodeStubInterface, kind string) (*Cursor, error) {
	iter, err := stub.GetStateByRange(stateKey(kind, ""), stateKey(kind, rangeEnd))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", kind, err)
	}
	return &Cursor{kind: kind, iter: iter, log: r.log}, nil
}

// Next decodes the next well-formed record into out and returns its full
// state key. Malformed entries are logged and skipped, never fatal. ok is
// false once the scan is exhausted.
func (c *Cursor) Next(out any) (key string, ok bool, err error) {
	for c.iter.HasNext() {
		kv, err := c.iter.Next()
		if err != nil {
			return "", false, fmt.Errorf("scan %s: %w", c.kind, err)
		}
		if err := json.Unmarshal(kv.Value, out); err != nil {
			c.log.Warn("skipping malformed ledger record", "key", kv.Key, "error", err)
			continue
		}
		return kv.Key, true, nil
	}
	return "", false, nil
}

// Close releases the underlying range query iterator.
func (c *Cursor) Close() error {
	return c.iter.Close()
}

// TxTime returns the deterministic transaction timestamp in whole seconds.
// All peers executing the same proposal observe the same value.
func TxTime(stub shim.ChaincodeStubInterface) (int64, error) {
	ts, err := stub.GetTxTimestamp()
	if err != nil {
		return 0, fmt.Errorf("tx timestamp: %w", err)
	}
	return timestampSeconds(ts), nil
}

func timestampSeconds(ts *timestamppb.Timestamp) int64 {
	if ts == nil {
		return 0
	}
	return ts.Seconds
}

// IsNotFound reports whether err denotes an absent or unparsable record.
func IsNotFound(err error) bool {
	return errors.Is(err, sentinel.ErrNotFound)
}
