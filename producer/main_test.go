package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/generate"
	"github.com/xor-shift/octorand/random"
)

func TestParseGenerators(t *testing.T) {
	requests, err := parseGenerators([]string{"bool", "hex:4", "number.tiny:0"})
	require.NoError(t, err)

	assert.Equal(t, []common.Request{
		{Generator: "bool"},
		{Generator: "hex", Count: 4},
		{Generator: "number.tiny", Count: 0},
	}, requests)
}

func TestParseGeneratorsRejects(t *testing.T) {
	for _, arg := range []string{"", "hex:x", "hex:-1", ":3"} {
		_, err := parseGenerators([]string{arg})
		assert.ErrorIs(t, err, common.ErrBadRequest, arg)
	}
}

func TestProduceIsReplayable(t *testing.T) {
	requests, err := parseGenerators([]string{"number.any:3", "colors.rgb", "typed.long"})
	require.NoError(t, err)

	var cases []common.Case
	require.NoError(t, produce(random.New(1234), 7, 5, requests, func(c common.Case) error {
		cases = append(cases, c)
		return nil
	}))

	require.Len(t, cases, 5)
	for i, c := range cases {
		assert.Equal(t, uint(i), c.Sequence)
		assert.Equal(t, uint(7), c.SessionID)
		assert.Len(t, c.Fields, 5)
	}

	assert.NoError(t, generate.Replay(1234, cases))
}

func TestProduceStopsOnUnknownGenerator(t *testing.T) {
	calls := 0
	err := produce(random.New(1), 0, 3, []common.Request{{Generator: "nope"}}, func(common.Case) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, generate.ErrUnknownGenerator)
	assert.Zero(t, calls)
}
