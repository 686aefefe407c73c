package main

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/generate"
	"github.com/xor-shift/octorand/util/rng"
)

func TestSessionSequencesCases(t *testing.T) {
	session := NewSession(3, 99)

	var cases []common.Case
	for i := 0; i < 4; i++ {
		c, err := session.Generate([]common.Request{{Generator: "number.any", Count: 2}}, nil)
		require.NoError(t, err)
		cases = append(cases, c)
	}

	for i, c := range cases {
		assert.Equal(t, uint(i), c.Sequence)
		assert.Equal(t, uint(3), c.SessionID)
		assert.Equal(t, uint32(99), c.Seed)
	}

	assert.Equal(t, rng.SeedDigest(99), cases[0].StateDigest)
	assert.NoError(t, generate.Replay(99, cases))
}

func TestSessionFailedCaseKeepsSequence(t *testing.T) {
	session := NewSession(1, 7)

	_, err := session.Generate([]common.Request{{Generator: "bool"}, {Generator: "missing"}}, nil)
	assert.ErrorIs(t, err, generate.ErrUnknownGenerator)

	c, err := session.Generate([]common.Request{{Generator: "bool"}}, nil)
	require.NoError(t, err)
	assert.Zero(t, c.Sequence)
	assert.Equal(t, rng.SeedDigest(7), c.StateDigest)
}

func TestSessionSnapshotRewindsStream(t *testing.T) {
	session := NewSession(1, 7)
	requests := []common.Request{{Generator: "hex", Count: 3}}

	snapshot, err := session.TakeSnapshot()
	require.NoError(t, err)

	first, err := session.Generate(requests, nil)
	require.NoError(t, err)

	require.NoError(t, session.LoadSnapshot(snapshot))

	second, err := session.Generate(requests, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Fields, second.Fields)
	assert.Equal(t, first.StateDigest, second.StateDigest)
	assert.Equal(t, uint(1), second.Sequence)

	assert.ErrorIs(t, session.LoadSnapshot(rng.Snapshot{}), rng.ErrBadSnapshot)
}

func TestSessionRecordsInSequenceOrder(t *testing.T) {
	session := NewSession(1, 5489)

	// record runs under the session lock, so the plain slice needs no locking of its own.
	var recorded []uint
	record := func(c common.Case) error {
		recorded = append(recorded, c.Sequence)
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.Generate([]common.Request{{Generator: "bool"}}, record)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	require.Len(t, recorded, 64)
	for i, seq := range recorded {
		assert.Equal(t, uint(i), seq)
	}
}

func TestSessionUnrecordedCaseIsUndone(t *testing.T) {
	session := NewSession(2, 31337)
	requests := []common.Request{{Generator: "number.any", Count: 3}}

	_, err := session.Generate(requests, func(common.Case) error {
		return errors.New("broker unavailable")
	})
	assert.ErrorIs(t, err, ErrNotRecorded)

	c, err := session.Generate(requests, func(common.Case) error { return nil })
	require.NoError(t, err)
	assert.Zero(t, c.Sequence)
	assert.Equal(t, rng.SeedDigest(31337), c.StateDigest)
	assert.NoError(t, generate.Replay(31337, []common.Case{c}))
}
