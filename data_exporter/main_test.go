package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xor-shift/octorand/common"
)

var exported = []common.Case{
	{
		CaseHeader: common.CaseHeader{SessionID: 4, Seed: 5489, Sequence: 0, StateDigest: 0xabc},
		Requests:   []common.Request{{Generator: "bool", Count: 2}},
		Fields:     []common.Field{{Generator: "bool", Value: "true"}, {Generator: "bool", Value: "false"}},
	},
	{
		CaseHeader: common.CaseHeader{SessionID: 4, Seed: 5489, Sequence: 1, StateDigest: 0xdef},
		Requests:   []common.Request{{Generator: "arrays.filled"}},
		Fields:     []common.Field{{Generator: "arrays.filled", Value: "[1,2]"}},
	},
}

func TestOutputName(t *testing.T) {
	name, err := outputName("session_{{.SessionNo}}.csv", 12)
	require.NoError(t, err)
	assert.Equal(t, "session_12.csv", name)

	_, err = outputName("{{.Nope", 1)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, exported, true))

	assert.Equal(t, ""+
		"Session,Sequence,Seed,State Digest,Field,Generator,Value\n"+
		"4,0,5489,0000000000000abc,0,bool,true\n"+
		"4,0,5489,0000000000000abc,1,bool,false\n"+
		"4,1,5489,0000000000000def,0,arrays.filled,\"[1,2]\"\n",
		buf.String())
}

func TestWriteCSVWithoutTitles(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, exported[:1], false))

	assert.Equal(t, "4,0,5489,0000000000000abc,0,bool,true\n4,0,5489,0000000000000abc,1,bool,false\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, exported))

	var decoded []common.Case
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, exported, decoded)

	buf.Reset()
	require.NoError(t, writeJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}
