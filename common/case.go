package common

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// MaxRequestCount bounds how many values a single request may ask for.
const MaxRequestCount = 1024

var ErrBadRequest = errors.New("bad case request")

// Request asks for Count values from the named generator. A zero Count means one.
type Request struct {
	Generator string `json:"gen" mapstructure:"gen"`
	Count     int    `json:"n" mapstructure:"n"`
}

type Field struct {
	Generator string `json:"gen"`
	Value     string `json:"value"`
}

// CaseHeader carries everything needed to reproduce a case: the seed of its session, its
// position among the session's cases and a digest of the engine state it was generated from.
type CaseHeader struct {
	SessionID   uint   `json:"sessionId"`
	Seed        uint32 `json:"seed"`
	Sequence    uint   `json:"seq"`
	StateDigest uint64 `json:"digest"`
}

type Case struct {
	CaseHeader

	Requests []Request `json:"requests"`
	Fields   []Field   `json:"fields"`
}

// ParseRequests decodes a JSON array of requests. Entries are decoded loosely, so numbers
// given as strings are accepted.
func ParseRequests(body []byte) (requests []Request, err error) {
	var raw []map[string]interface{}
	if err = json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRequest, err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no requests", ErrBadRequest)
	}

	requests = make([]Request, len(raw))

	for k, v := range raw {
		var decoder *mapstructure.Decoder
		decoder, err = mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &requests[k],
		})
		if err != nil {
			return nil, err
		}

		if err = decoder.Decode(v); err != nil {
			return nil, fmt.Errorf("%w: request at index %d: %s", ErrBadRequest, k, err)
		}

		if err = requests[k].Validate(); err != nil {
			return nil, fmt.Errorf("request at index %d: %w", k, err)
		}
	}

	return requests, nil
}

func (req Request) Validate() error {
	if req.Generator == "" {
		return fmt.Errorf("%w: missing generator name", ErrBadRequest)
	}

	if req.Count < 0 || req.Count > MaxRequestCount {
		return fmt.Errorf("%w: count %d outside [0, %d]", ErrBadRequest, req.Count, MaxRequestCount)
	}

	return nil
}

// Times is the number of values the request produces.
func (req Request) Times() int {
	if req.Count == 0 {
		return 1
	}

	return req.Count
}

func EncodeCase(c Case) ([]byte, error) {
	var buffer bytes.Buffer
	if err := gob.NewEncoder(&buffer).Encode(c); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

func DecodeCase(body []byte) (Case, error) {
	var c Case
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&c); err != nil {
		return Case{}, err
	}

	return c, nil
}
