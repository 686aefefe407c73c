package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequests(t *testing.T) {
	requests, err := ParseRequests([]byte(`[{"gen": "number.any", "n": 3}, {"gen": "colors.rgb"}, {"gen": "typed.long", "n": "2"}]`))
	require.NoError(t, err)

	require.Equal(t, []Request{
		{Generator: "number.any", Count: 3},
		{Generator: "colors.rgb"},
		{Generator: "typed.long", Count: 2},
	}, requests)

	assert.Equal(t, 1, requests[1].Times())
	assert.Equal(t, 3, requests[0].Times())
}

func TestParseRequestsRejects(t *testing.T) {
	bodies := []string{
		`not json`,
		`[]`,
		`[{"n": 1}]`,
		`[{"gen": "bool", "n": -1}]`,
		`[{"gen": "bool", "n": 100000}]`,
		`[{"gen": "bool", "extra": true}]`,
		`[{"gen": "bool", "n": "many"}]`,
	}

	for _, body := range bodies {
		_, err := ParseRequests([]byte(body))
		require.Errorf(t, err, "body %s", body)
		require.Truef(t, errors.Is(err, ErrBadRequest), "body %s: %v", body, err)
	}
}

func TestCaseGobRoundTrip(t *testing.T) {
	c := Case{
		CaseHeader: CaseHeader{SessionID: 4, Seed: 99, Sequence: 12, StateDigest: 0xfeedface},
		Requests:   []Request{{Generator: "bool", Count: 2}},
		Fields:     []Field{{Generator: "bool", Value: "true"}, {Generator: "bool", Value: "false"}},
	}

	body, err := EncodeCase(c)
	require.NoError(t, err)

	decoded, err := DecodeCase(body)
	require.NoError(t, err)
	require.Equal(t, c, decoded)

	_, err = DecodeCase([]byte("garbage"))
	require.Error(t, err)
}
