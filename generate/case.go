package generate

import (
	"errors"
	"fmt"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/random"
)

var ErrReplayMismatch = errors.New("replay mismatch")

// BuildCase runs every request against r and collects the rendered values. The header's
// Seed and StateDigest are filled in from r. If any request fails, r is rewound to where it
// was before the call, so a rejected case consumes no randomness.
func BuildCase(r *random.Random, header common.CaseHeader, requests []common.Request) (common.Case, error) {
	snapshot, err := r.ExportState()
	if err != nil {
		return common.Case{}, err
	}

	header.Seed = r.Seed()
	header.StateDigest = snapshot.Digest()

	c := common.Case{
		CaseHeader: header,
		Requests:   requests,
	}

	for _, req := range requests {
		if err = req.Validate(); err != nil {
			break
		}

		var gen Generator
		if gen, err = Lookup(req.Generator); err != nil {
			break
		}

		for i := 0; i < req.Times() && err == nil; i++ {
			var value string
			if value, err = gen(r); err == nil {
				c.Fields = append(c.Fields, common.Field{Generator: req.Generator, Value: value})
			}
		}

		if err != nil {
			break
		}
	}

	if err != nil {
		if rewindErr := r.ImportState(snapshot); rewindErr != nil {
			return common.Case{}, fmt.Errorf("%s (rewinding also failed: %s)", err, rewindErr)
		}
		return common.Case{}, err
	}

	return c, nil
}

// Replay regenerates a session's cases from its seed and checks that every digest and value
// matches. cases must be in sequence order, contiguous, and start at the session's first case.
func Replay(seed uint32, cases []common.Case) error {
	r := random.New(seed)

	for i, recorded := range cases {
		if i > 0 && recorded.Sequence != cases[i-1].Sequence+1 {
			return fmt.Errorf("%w: gap between case %d and %d", ErrReplayMismatch, cases[i-1].Sequence, recorded.Sequence)
		}

		if recorded.Seed != seed {
			return fmt.Errorf("%w: case %d was generated from seed %d, not %d", ErrReplayMismatch, recorded.Sequence, recorded.Seed, seed)
		}

		replayed, err := BuildCase(r, recorded.CaseHeader, recorded.Requests)
		if err != nil {
			return fmt.Errorf("case %d: %w", recorded.Sequence, err)
		}

		if replayed.StateDigest != recorded.StateDigest {
			return fmt.Errorf("%w: case %d starts from state %016x, recorded %016x",
				ErrReplayMismatch, recorded.Sequence, replayed.StateDigest, recorded.StateDigest)
		}

		if len(replayed.Fields) != len(recorded.Fields) {
			return fmt.Errorf("%w: case %d has %d values, recorded %d",
				ErrReplayMismatch, recorded.Sequence, len(replayed.Fields), len(recorded.Fields))
		}

		for k := range replayed.Fields {
			if replayed.Fields[k] != recorded.Fields[k] {
				return fmt.Errorf("%w: case %d value %d is %q, recorded %q",
					ErrReplayMismatch, recorded.Sequence, k, replayed.Fields[k].Value, recorded.Fields[k].Value)
			}
		}
	}

	return nil
}
