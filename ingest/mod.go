package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/kataras/golog"
	amqp "github.com/streadway/amqp"
	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/config"
)

var (
	ErrStaleSequence = errors.New("stale case sequence")
	ErrNotRunning    = errors.New("recorder is not running")
)

// queueDepth is the number of batches each worker buffers.
const queueDepth = 128

// tracker remembers the next sequence number it expects from each session.
type tracker struct {
	mu   sync.Mutex
	next map[uint]uint
}

func newTracker() *tracker {
	return &tracker{next: map[uint]uint{}}
}

// accept admits a case whose sequence is not older than what the session already produced.
// Skipped sequence numbers are allowed (failed requests never get recorded) and returned as dropped.
func (t *tracker) accept(sessionID, sequence uint) (dropped uint, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	expected := t.next[sessionID]
	if sequence < expected {
		return 0, fmt.Errorf("%w: session %d sent %d, expected at least %d", ErrStaleSequence, sessionID, sequence, expected)
	}

	t.next[sessionID] = sequence + 1

	return sequence - expected, nil
}

// Recorder persists sessions and fans every generated case out over AMQP. All cases of a
// session go through the same worker, so they are published in the order they were handed in.
type Recorder struct {
	db       *sql.DB
	amqpConn *amqp.Connection
	logger   *golog.Logger

	sequences *tracker

	// mu guards queues; it is nil while the recorder is not running.
	mu       sync.RWMutex
	queues   []chan []common.Case
	workerWG sync.WaitGroup
}

func NewRecorder(dbConfig config.Database, broker config.Broker, logger *golog.Logger) (*Recorder, error) {
	var err error

	recorder := &Recorder{
		logger:    logger,
		sequences: newTracker(),
	}

	if recorder.amqpConn, err = amqp.Dial(broker.URL); err != nil {
		return nil, err
	}

	mysqlConfig := dbConfig.MySQL()
	if recorder.db, err = sql.Open("mysql", mysqlConfig.FormatDSN()); err != nil {
		_ = recorder.amqpConn.Close()
		return nil, err
	}

	return recorder, nil
}

// StartSession records a new session and returns its id.
func (recorder *Recorder) StartSession(ctx context.Context, seed uint32, digest uint64) (uint, error) {
	rows, err := recorder.db.QueryContext(ctx,
		"insert into sessions (seed, initial_digest) values (?, ?) returning session_id",
		seed, digest)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) {
			return 0, fmt.Errorf("recording session (mysql error %d): %w", mysqlErr.Number, err)
		}
		return 0, err
	}

	defer rows.Close()

	if !rows.Next() {
		return 0, errors.New("no rows returned from sql insert query")
	}

	var sessionID uint
	if err := rows.Scan(&sessionID); err != nil {
		return 0, err
	}

	recorder.logger.Infof("session %d started with seed %d", sessionID, seed)

	return sessionID, nil
}

// partition splits cases into one batch per queue, keyed by session, keeping their order.
func partition(cases []common.Case, queueCount int) [][]common.Case {
	batches := make([][]common.Case, queueCount)
	for _, c := range cases {
		k := int(c.SessionID % uint(queueCount))
		batches[k] = append(batches[k], c)
	}

	return batches
}

// NewCases queues cases for publishing. It blocks while the session's worker is backed up and
// fails with ErrNotRunning before Start or after Stop.
func (recorder *Recorder) NewCases(cases []common.Case) error {
	recorder.mu.RLock()
	defer recorder.mu.RUnlock()

	if len(recorder.queues) == 0 {
		return ErrNotRunning
	}

	for k, batch := range partition(cases, len(recorder.queues)) {
		if len(batch) != 0 {
			recorder.queues[k] <- batch
		}
	}

	return nil
}

// Start opens one AMQP channel per worker and starts the workers. Either every worker starts
// or none does.
func (recorder *Recorder) Start(numWorkers uint) error {
	if numWorkers == 0 {
		return fmt.Errorf("%w: zero workers requested", ErrNotRunning)
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()

	if recorder.queues != nil {
		return errors.New("recorder already started")
	}

	channels := make([]*amqp.Channel, 0, numWorkers)
	closeAll := func() {
		for _, ch := range channels {
			_ = ch.Close()
		}
	}

	for i := uint(0); i < numWorkers; i++ {
		amqpChan, err := recorder.amqpConn.Channel()
		if err != nil {
			closeAll()
			return fmt.Errorf("failed to establish an amqp channel: %w", err)
		}

		channels = append(channels, amqpChan)

		if err = common.DeclareCasesExchange(amqpChan); err != nil {
			closeAll()
			return fmt.Errorf("failed to declare the cases exchange: %w", err)
		}
	}

	recorder.queues = make([]chan []common.Case, numWorkers)
	recorder.workerWG.Add(int(numWorkers))

	for i, amqpChan := range channels {
		recorder.queues[i] = make(chan []common.Case, queueDepth)
		go recorder.task(recorder.queues[i], amqpChan)
	}

	return nil
}

// Stop drains the queues, waits for the workers and closes the connections.
func (recorder *Recorder) Stop() error {
	recorder.mu.Lock()
	for _, queue := range recorder.queues {
		close(queue)
	}
	recorder.queues = nil
	recorder.mu.Unlock()

	recorder.workerWG.Wait()

	dbErr := recorder.db.Close()
	if err := recorder.amqpConn.Close(); err != nil {
		return err
	}

	return dbErr
}

// processCaseBatch publishes every case it can; one failing case does not hold back the rest.
func (recorder *Recorder) processCaseBatch(batch []common.Case, amqpChan *amqp.Channel) error {
	recorder.logger.Debugf("%d new cases", len(batch))

	var errs []error

	for _, c := range batch {
		dropped, err := recorder.sequences.accept(c.SessionID, c.Sequence)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if dropped != 0 {
			recorder.logger.Warnf("session %d skipped %d cases before %d", c.SessionID, dropped, c.Sequence)
		}

		body, err := common.EncodeCase(c)
		if err != nil {
			errs = append(errs, fmt.Errorf("case %d of session %d: %w", c.Sequence, c.SessionID, err))
			continue
		}

		if err = amqpChan.Publish(
			common.CasesExchange,
			"",
			false,
			false,
			amqp.Publishing{
				ContentType: "application/octet-stream",
				Body:        body,
			}); err != nil {
			errs = append(errs, fmt.Errorf("case %d of session %d: %w", c.Sequence, c.SessionID, err))
		}
	}

	return errors.Join(errs...)
}

func (recorder *Recorder) task(queue <-chan []common.Case, amqpChan *amqp.Channel) {
	defer recorder.workerWG.Done()
	defer amqpChan.Close()

	for batch := range queue {
		if err := recorder.processCaseBatch(batch, amqpChan); err != nil {
			recorder.logger.Errorf("error while processing a batch of %d cases: %s", len(batch), err)
		}
	}
}
