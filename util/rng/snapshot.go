package rng

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	farm "github.com/dgryski/go-farm"
)

var ErrBadSnapshot = errors.New("bad twister snapshot")

// Snapshot is the exported (vector, cursor) pair of a MT19937State.
// Words are kept signed to match the representation other implementations exchange.
type Snapshot struct {
	Vector []int32
	Index  int
}

func (state *MT19937State) Export() Snapshot {
	snapshot := Snapshot{
		Vector: make([]int32, mtN),
		Index:  state.Index,
	}

	for i, v := range state.State {
		snapshot.Vector[i] = int32(v)
	}

	return snapshot
}

// Import replaces the whole state with the snapshot.
func (state *MT19937State) Import(snapshot Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	for i, v := range snapshot.Vector {
		state.State[i] = uint32(v)
	}
	state.Index = snapshot.Index

	return nil
}

func (snapshot Snapshot) Validate() error {
	if len(snapshot.Vector) != mtN {
		return fmt.Errorf("%w: vector has %d words, expected %d", ErrBadSnapshot, len(snapshot.Vector), mtN)
	}

	if snapshot.Index < 0 || snapshot.Index > mtN {
		return fmt.Errorf("%w: index %d outside [0, %d]", ErrBadSnapshot, snapshot.Index, mtN)
	}

	return nil
}

// Digest fingerprints the snapshot. Equal snapshots always produce equal digests.
func (snapshot Snapshot) Digest() uint64 {
	buf := make([]byte, 4*len(snapshot.Vector)+4)

	for i, v := range snapshot.Vector {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	binary.LittleEndian.PutUint32(buf[len(buf)-4:], uint32(snapshot.Index))

	return farm.Fingerprint64(buf)
}

// MarshalJSON encodes the snapshot as [vector, index].
// SeedDigest is the digest of a freshly seeded engine, the state every session starts from.
func SeedDigest(seed uint32) uint64 {
	return NewMT19937(seed).Export().Digest()
}

func (snapshot Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{snapshot.Vector, snapshot.Index})
}

func (snapshot *Snapshot) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}

	if len(parts) != 2 {
		return fmt.Errorf("%w: expected [vector, index], got %d elements", ErrBadSnapshot, len(parts))
	}

	var decoded Snapshot
	if err := json.Unmarshal(parts[0], &decoded.Vector); err != nil {
		return fmt.Errorf("%w: vector: %s", ErrBadSnapshot, err)
	}

	if err := json.Unmarshal(parts[1], &decoded.Index); err != nil {
		return fmt.Errorf("%w: index: %s", ErrBadSnapshot, err)
	}

	*snapshot = decoded
	return nil
}
