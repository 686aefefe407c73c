package rng

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMT19937ReferenceVectors(t *testing.T) {
	cases := []struct {
		seed     uint32
		expected []uint32
	}{
		{
			seed: 5489,
			expected: []uint32{
				3499211612, 581869302, 3890346734, 3586334585, 545404204,
				4161255391, 3922919429, 949333985, 2715962298, 1323567403,
			},
		},
		{
			seed:     0,
			expected: []uint32{2357136044, 2546248239, 3071714933, 3626093760, 2588848963},
		},
	}

	for _, c := range cases {
		state := NewMT19937(c.seed)
		for i, want := range c.expected {
			require.Equalf(t, want, state.Next(), "seed %d, draw %d", c.seed, i)
		}
	}
}

func TestMT19937TenThousandth(t *testing.T) {
	state := NewMT19937(5489)

	var v uint32
	for i := 0; i < 10000; i++ {
		v = state.Next()
	}

	require.Equal(t, uint32(4123659995), v)
}

func TestSeedLeavesCursorAtEnd(t *testing.T) {
	state := NewMT19937(1)
	require.Equal(t, mtN, state.Index)

	state.Next()
	require.Equal(t, 1, state.Index)
}

func TestReseedRestartsStream(t *testing.T) {
	state := NewMT19937(42)
	first := []uint32{state.Next(), state.Next(), state.Next()}

	for i := 0; i < 1000; i++ {
		state.Next()
	}

	state.Seed(42)
	require.Equal(t, first, []uint32{state.Next(), state.Next(), state.Next()})
}

func TestFloat53UsesTwoDrawsInOrder(t *testing.T) {
	a := NewMT19937(7)
	b := NewMT19937(7)

	hi := b.Next() >> 5
	lo := b.Next() >> 6
	want := (float64(hi)*67108864.0 + float64(lo)) / 9007199254740992.0

	require.Equal(t, want, a.Float53())
	require.Equal(t, b.Next(), a.Next())
}

func TestFloat53Range(t *testing.T) {
	state := NewMT19937(99)
	for i := 0; i < 10000; i++ {
		f := state.Float53()
		require.GreaterOrEqual(t, f, 0.0)
		require.Less(t, f, 1.0)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	state := NewMT19937(1234)
	for i := 0; i < 700; i++ {
		state.Next()
	}

	reference := NewMT19937(1234)
	for i := 0; i < 700; i++ {
		reference.Next()
	}

	snapshot := state.Export()
	require.NoError(t, state.Import(snapshot))

	for i := 0; i < 2000; i++ {
		require.Equal(t, reference.Next(), state.Next())
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	state := NewMT19937(3)
	snapshot := state.Export()
	digest := snapshot.Digest()

	for i := 0; i < 1500; i++ {
		state.Next()
	}

	require.Equal(t, digest, snapshot.Digest())

	restored := NewMT19937(0)
	require.NoError(t, restored.Import(snapshot))
	require.Equal(t, NewMT19937(3).Next(), restored.Next())
}

func TestImportRejectsMalformedSnapshots(t *testing.T) {
	state := NewMT19937(5)
	before := state.Export()

	err := state.Import(Snapshot{Vector: make([]int32, 10), Index: 0})
	require.True(t, errors.Is(err, ErrBadSnapshot))

	err = state.Import(Snapshot{Vector: make([]int32, mtN), Index: mtN + 1})
	require.True(t, errors.Is(err, ErrBadSnapshot))

	err = state.Import(Snapshot{Vector: make([]int32, mtN), Index: -1})
	require.True(t, errors.Is(err, ErrBadSnapshot))

	require.Equal(t, before.Digest(), state.Export().Digest())
}

func TestSnapshotJSON(t *testing.T) {
	state := NewMT19937(77)
	state.Next()

	data, err := json.Marshal(state.Export())
	require.NoError(t, err)

	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 2)
	assert.Equal(t, "1", string(raw[1]))

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, state.Export(), decoded)

	require.Error(t, json.Unmarshal([]byte(`[[1,2,3]]`), &decoded))
}

func TestSnapshotKeepsSignedWords(t *testing.T) {
	state := NewMT19937(0)
	state.State[0] = 0x80000000

	require.Equal(t, int32(-2147483648), state.Export().Vector[0])
}

func TestMT19937Determinism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("same seed produces identical streams", prop.ForAll(
		func(seed uint32, count int) bool {
			a := NewMT19937(seed)
			b := NewMT19937(seed)

			for i := 0; i < count; i++ {
				if a.Next() != b.Next() {
					return false
				}
			}
			return true
		},
		gen.UInt32(),
		gen.IntRange(1, 1500),
	))

	properties.Property("export/import keeps the stream", prop.ForAll(
		func(seed uint32, skip int) bool {
			a := NewMT19937(seed)
			b := NewMT19937(seed)
			for i := 0; i < skip; i++ {
				a.Next()
				b.Next()
			}

			if err := a.Import(a.Export()); err != nil {
				return false
			}

			for i := 0; i < 700; i++ {
				if a.Next() != b.Next() {
					return false
				}
			}
			return true
		},
		gen.UInt32(),
		gen.IntRange(0, 1300),
	))

	properties.TestingRun(t)
}

func TestSeedDigestIsFreshEngineDigest(t *testing.T) {
	require.Equal(t, NewMT19937(5489).Export().Digest(), SeedDigest(5489))
	require.NotEqual(t, SeedDigest(5489), SeedDigest(0))

	state := NewMT19937(5489)
	state.Next()
	require.NotEqual(t, SeedDigest(5489), state.Export().Digest())
}
