package main

import (
	"fmt"
	"sync"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/config"
	"github.com/xor-shift/octorand/util"
)

// viewer keeps the most recent case of every session it has seen.
type viewer struct {
	mu       sync.RWMutex
	last     *common.Case
	sessions map[uint]common.Case
}

func newViewer() *viewer {
	return &viewer{sessions: map[uint]common.Case{}}
}

func (v *viewer) observe(c common.Case) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if prev, ok := v.sessions[c.SessionID]; ok && prev.Sequence > c.Sequence {
		return fmt.Errorf("case %d of session %d arrived after case %d", c.Sequence, c.SessionID, prev.Sequence)
	}

	v.sessions[c.SessionID] = c
	v.last = &c

	return nil
}

func (v *viewer) routes(app *iris.Application) {
	app.Get("/test", func(ctx iris.Context) {
		_, _ = ctx.Text("OK")
	})

	app.Get("/data", func(ctx iris.Context) {
		v.mu.RLock()
		defer v.mu.RUnlock()

		if v.last == nil {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}

		_, _ = ctx.JSON(v.last)
	})

	app.Get("/data/{id:uint64}", func(ctx iris.Context) {
		id, err := ctx.Params().GetUint64("id")
		if err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			return
		}

		v.mu.RLock()
		defer v.mu.RUnlock()

		c, ok := v.sessions[uint(id)]
		if !ok {
			ctx.StatusCode(iris.StatusNotFound)
			_, _ = ctx.JSON(iris.Map{"error": "no cases seen for this session"})
			return
		}

		_, _ = ctx.JSON(c)
	})
}

func main() {
	var cfg struct {
		config.Service
		Port string `env:"CONSUMER_FE_PORT" envDefault:"8081"`
	}

	if err := config.Load(&cfg); err != nil {
		golog.Fatalf("loading configuration failed: %s", err)
	}

	logger := util.NewLogger("[consumer_fe] ", cfg.Harness.LogLevel)
	v := newViewer()

	consumer, err := common.NewAMQPConsumer(cfg.Broker.URL, "cases_queue_fe", "cases_consumer_fe", logger, func(c common.Case) error {
		logger.Debugf("session %d case %d: %d fields", c.SessionID, c.Sequence, len(c.Fields))
		return v.observe(c)
	})
	if err != nil {
		logger.Fatalf("%s", err)
	}

	if err = consumer.Start(); err != nil {
		logger.Fatalf("%s", err)
	}

	app := iris.New()
	app.Logger().SetLevel(cfg.Harness.LogLevel)
	v.routes(app)

	if err = app.Listen(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		logger.Errorf("%s", err)
	}

	if err = consumer.Stop(); err != nil {
		logger.Errorf("%s", err)
	}

	consumer.Wait()
	_ = consumer.Close()
}
