package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"os/signal"

	"github.com/go-sql-driver/mysql"
	"github.com/kataras/golog"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/config"
	"github.com/xor-shift/octorand/util"
)

const insertQuery = "INSERT INTO cases (session_id, seq, seed, digest, requests, fields) VALUES (?, ?, ?, ?, ?, ?)"

// caseRow lays a case out in insertQuery's column order.
func caseRow(c common.Case) ([]any, error) {
	requests, err := json.Marshal(c.Requests)
	if err != nil {
		return nil, err
	}

	fields := c.Fields
	if fields == nil {
		fields = []common.Field{}
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	return []any{c.SessionID, c.Sequence, c.Seed, c.StateDigest, string(requests), string(fieldsJSON)}, nil
}

func main() {
	var cfg config.Service
	if err := config.Load(&cfg); err != nil {
		golog.Fatalf("loading configuration failed: %s", err)
	}

	logger := util.NewLogger("[consumer_db] ", cfg.Harness.LogLevel)

	mysqlConfig := cfg.Database.MySQL()
	db, err := sql.Open("mysql", mysqlConfig.FormatDSN())
	if err != nil {
		logger.Fatalf("%s", err)
	}

	defer db.Close()

	storeCase := func(c common.Case) error {
		row, err := caseRow(c)
		if err != nil {
			return err
		}

		tx, err := db.BeginTx(context.TODO(), nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err = tx.Exec(insertQuery, row...); err != nil {
			var mysqlErr *mysql.MySQLError
			// 1062: duplicate entry, the case was already stored by an earlier delivery
			if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
				logger.Debugf("case %d of session %d already stored", c.Sequence, c.SessionID)
				return nil
			}
			return err
		}

		logger.Debugf("stored case %d of session %d", c.Sequence, c.SessionID)

		return tx.Commit()
	}

	consumer, err := common.NewAMQPConsumer(cfg.Broker.URL, "cases_queue_db", "cases_consumer_db", logger, storeCase)
	if err != nil {
		logger.Fatalf("%s", err)
	}

	if err = consumer.Start(); err != nil {
		logger.Fatalf("%s", err)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	go func() {
		<-interrupt
		logger.Info("stopping")
		if err := consumer.Stop(); err != nil {
			logger.Errorf("cancelling the consumer: %s", err)
		}
	}()

	consumer.Wait()

	if err = consumer.Close(); err != nil {
		logger.Errorf("%s", err)
	}
}
