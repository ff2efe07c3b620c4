// Package ledger implements a generic object repository over the chaincode
// key-value state. Entities live under "{kind}:{id}" as canonical JSON so all
// peers produce byte-identical writes for the same transaction.
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hyperledger/fabric-chaincode-go/shim"

	"campusvote/pkg/platform/sentinel"
)

// seqID is the fixed record id of the per-kind sequence counter, stored under
// the "{kind}-seq" prefix.
const seqID = "seq"

// rangeEnd is appended to "{kind}:" to form the exclusive upper bound of a
// prefix scan. '~' sorts above every character the id alphabet uses.
const rangeEnd = "~"

type Repository struct {
	log *slog.Logger
}

func NewRepository(log *slog.Logger) *Repository {
	if log == nil {
		log = slog.Default()
	}
	return &Repository{log: log}
}

func stateKey(kind, id string) string {
	return kind + ":" + id
}

// marshalCanonical serializes v with all object keys sorted recursively.
// Round-tripping through a generic value lets encoding/json order map keys;
// json.Number preserves the exact numeric text.
func marshalCanonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	return json.Marshal(generic)
}

// Save writes v under "{kind}:{id}", replacing any existing record.
func (r *Repository) Save(stub shim.ChaincodeStubInterface, kind, id string, v any) error {
	data, err := marshalCanonical(v)
	if err != nil {
		return fmt.Errorf("save %s:%s: %w", kind, id, err)
	}
	if err := stub.PutState(stateKey(kind, id), data); err != nil {
		return fmt.Errorf("save %s:%s: %w", kind, id, err)
	}
	return nil
}

// Get reads the record into out. A missing key and stored bytes that fail to
// parse are both reported as sentinel.ErrNotFound; a half-written record must
// not fail a whole transaction.
func (r *Repository) Get(stub shim.ChaincodeStubInterface, kind, id string, out any) error {
	data, err := stub.GetState(stateKey(kind, id))
	if err != nil {
		return fmt.Errorf("get %s:%s: %w", kind, id, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("get %s:%s: %w", kind, id, sentinel.ErrNotFound)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("get %s:%s: %w", kind, id, sentinel.ErrNotFound)
	}
	return nil
}

// Update reads the record, shallow-merges patch over it, rewrites it and, when
// out is non-nil, re-reads the result. It never creates a record that was not
// there before.
func (r *Repository) Update(stub shim.ChaincodeStubInterface, kind, id string, patch map[string]any, out any) error {
	var base map[string]any
	if err := r.Get(stub, kind, id, &base); err != nil {
		return err
	}
	for k, v := range patch {
		base[k] = v
	}
	if err := r.Save(stub, kind, id, base); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return r.Get(stub, kind, id, out)
}

// Delete removes the record. Deleting an absent key is not an error.
func (r *Repository) Delete(stub shim.ChaincodeStubInterface, kind, id string) error {
	if err := stub.DelState(stateKey(kind, id)); err != nil {
		return fmt.Errorf("delete %s:%s: %w", kind, id, err)
	}
	return nil
}

// NextSequenceID increments and returns the monotonic counter for kind. The
// counter record is a single hot key; concurrent increments are serialized by
// the platform's read-set conflict detection, not here.
func (r *Repository) NextSequenceID(stub shim.ChaincodeStubInterface, kind string) (int64, error) {
	seqKind := kind + "-seq"
	var current int64
	if err := r.Get(stub, seqKind, seqID, &current); err != nil {
		if !IsNotFound(err) {
			return 0, err
		}
		current = 0
	}
	next := current + 1
	if err := r.Save(stub, seqKind, seqID, next); err != nil {
		return 0, err
	}
	return next, nil
}

// ChangeID moves a record to a new id. Fails with ErrNotFound when the old id
// is absent and ErrConflict when the new id is occupied. The delete and the
// write are two state mutations bound into one all-or-nothing commit by the
// transaction scope.
func (r *Repository) ChangeID(stub shim.ChaincodeStubInterface, kind, oldID, newID string) error {
	var obj any
	if err := r.Get(stub, kind, oldID, &obj); err != nil {
		return err
	}
	var occupied any
	err := r.Get(stub, kind, newID, &occupied)
	if err == nil {
		return fmt.Errorf("change id %s:%s: %w", kind, newID, sentinel.ErrConflict)
	}
	if !IsNotFound(err) {
		return err
	}
	if err := r.Delete(stub, kind, oldID); err != nil {
		return err
	}
	return r.Save(stub, kind, newID, obj)
}
