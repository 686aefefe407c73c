package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/generate"
	"github.com/xor-shift/octorand/random"
	"github.com/xor-shift/octorand/util/rng"
)

var ErrNotRecorded = errors.New("case could not be recorded")

// Session owns one seeded stream. Every draw happens under mu.
type Session struct {
	mu sync.Mutex

	id           uint
	rand         *random.Random
	nextSequence uint
}

func NewSession(id uint, seed uint32) *Session {
	return &Session{
		id:   id,
		rand: random.New(seed),
	}
}

func (session *Session) ID() uint {
	return session.id
}

func (session *Session) Seed() uint32 {
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.rand.Seed()
}

// Generate builds the session's next case and hands it to record, all under the session lock,
// so cases reach record in sequence order. If generation or recording fails, the stream and the
// sequence counter are left as they were.
func (session *Session) Generate(requests []common.Request, record func(common.Case) error) (common.Case, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	snapshot, err := session.rand.ExportState()
	if err != nil {
		return common.Case{}, err
	}

	c, err := generate.BuildCase(session.rand, common.CaseHeader{
		SessionID: session.id,
		Sequence:  session.nextSequence,
	}, requests)
	if err != nil {
		return common.Case{}, err
	}

	if record != nil {
		if err = record(c); err != nil {
			if rewindErr := session.rand.ImportState(snapshot); rewindErr != nil {
				return common.Case{}, fmt.Errorf("%w: %s (rewinding also failed: %s)", ErrNotRecorded, err, rewindErr)
			}
			return common.Case{}, fmt.Errorf("%w: %s", ErrNotRecorded, err)
		}
	}

	session.nextSequence++

	return c, nil
}

// TakeSnapshot exports the stream position. The sequence counter is not part of it: cases keep
// counting up even after the stream is rewound.
func (session *Session) TakeSnapshot() (rng.Snapshot, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.rand.ExportState()
}

func (session *Session) LoadSnapshot(snapshot rng.Snapshot) error {
	session.mu.Lock()
	defer session.mu.Unlock()

	return session.rand.ImportState(snapshot)
}
