package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/config"
	"github.com/xor-shift/octorand/generate"
	"github.com/xor-shift/octorand/ingest"
	"github.com/xor-shift/octorand/random"
	"github.com/xor-shift/octorand/util"
	"github.com/xor-shift/octorand/util/rng"
)

type caseRecorder interface {
	StartSession(ctx context.Context, seed uint32, digest uint64) (uint, error)
	NewCases(cases []common.Case) error
}

type Server struct {
	app      *iris.Application
	recorder caseRecorder

	// fixedSeed, when set, is used for sessions that do not ask for a seed themselves.
	fixedSeed *uint32

	mu       sync.RWMutex
	sessions map[uint]*Session
}

func NewServer(recorder caseRecorder, fixedSeed *uint32, logLevel string) *Server {
	server := &Server{
		app:       iris.New(),
		recorder:  recorder,
		fixedSeed: fixedSeed,
		sessions:  map[uint]*Session{},
	}

	server.app.Logger().SetLevel(logLevel)

	server.app.Get("/generators", func(ctx iris.Context) {
		_, _ = ctx.JSON(generate.Names())
	})

	server.app.Post("/session", server.newSession)
	server.app.Post("/session/{id:uint64}/cases", server.newCase)
	server.app.Get("/session/{id:uint64}/state", server.getState)
	server.app.Put("/session/{id:uint64}/state", server.putState)

	return server
}

func fail(ctx iris.Context, status int, err error) {
	ctx.StatusCode(status)
	_, _ = ctx.JSON(iris.Map{"error": err.Error()})
}

func (server *Server) seedFor(requested *uint32) uint32 {
	switch {
	case requested != nil:
		return *requested
	case server.fixedSeed != nil:
		return *server.fixedSeed
	default:
		return random.ClockSeed()
	}
}

func (server *Server) newSession(ctx iris.Context) {
	body, err := ctx.GetBody()
	if err != nil {
		fail(ctx, iris.StatusBadRequest, err)
		return
	}

	var request struct {
		Seed *uint32 `json:"seed"`
	}

	if len(bytes.TrimSpace(body)) != 0 {
		if err = json.Unmarshal(body, &request); err != nil {
			fail(ctx, iris.StatusBadRequest, err)
			return
		}
	}

	seed := server.seedFor(request.Seed)

	id, err := server.recorder.StartSession(ctx.Request().Context(), seed, rng.SeedDigest(seed))
	if err != nil {
		server.app.Logger().Errorf("starting a session failed: %s", err)
		fail(ctx, iris.StatusInternalServerError, errors.New("could not record the session"))
		return
	}

	server.mu.Lock()
	server.sessions[id] = NewSession(id, seed)
	server.mu.Unlock()

	server.app.Logger().Infof("session %d started from %s with seed %d", id, ctx.RemoteAddr(), seed)

	_, _ = ctx.JSON(iris.Map{"sessionId": id, "seed": seed})
}

func (server *Server) session(ctx iris.Context) (*Session, bool) {
	id, err := ctx.Params().GetUint64("id")
	if err != nil {
		fail(ctx, iris.StatusBadRequest, err)
		return nil, false
	}

	server.mu.RLock()
	session, ok := server.sessions[uint(id)]
	server.mu.RUnlock()

	if !ok {
		fail(ctx, iris.StatusNotFound, errors.New("no such session"))
		return nil, false
	}

	return session, true
}

func (server *Server) newCase(ctx iris.Context) {
	session, ok := server.session(ctx)
	if !ok {
		return
	}

	body, err := ctx.GetBody()
	if err != nil {
		fail(ctx, iris.StatusBadRequest, err)
		return
	}

	requests, err := common.ParseRequests(body)
	if err != nil {
		fail(ctx, iris.StatusBadRequest, err)
		return
	}

	c, err := session.Generate(requests, func(c common.Case) error {
		return server.recorder.NewCases([]common.Case{c})
	})
	if err != nil {
		status := iris.StatusInternalServerError
		switch {
		case errors.Is(err, ErrNotRecorded):
			status = iris.StatusServiceUnavailable
			server.app.Logger().Errorf("session %d: %s", session.ID(), err)
		case errors.Is(err, generate.ErrUnknownGenerator), errors.Is(err, common.ErrBadRequest), errors.Is(err, random.ErrInvalidArgument):
			status = iris.StatusBadRequest
			server.app.Logger().Warnf("session %d: case generation failed: %s", session.ID(), err)
		}

		fail(ctx, status, err)
		return
	}

	_, _ = ctx.JSON(c)
}

func (server *Server) getState(ctx iris.Context) {
	session, ok := server.session(ctx)
	if !ok {
		return
	}

	snapshot, err := session.TakeSnapshot()
	if err != nil {
		fail(ctx, iris.StatusInternalServerError, err)
		return
	}

	_, _ = ctx.JSON(snapshot)
}

func (server *Server) putState(ctx iris.Context) {
	session, ok := server.session(ctx)
	if !ok {
		return
	}

	body, err := ctx.GetBody()
	if err != nil {
		fail(ctx, iris.StatusBadRequest, err)
		return
	}

	var snapshot rng.Snapshot
	if err = json.Unmarshal(body, &snapshot); err != nil {
		fail(ctx, iris.StatusBadRequest, err)
		return
	}

	if err = session.LoadSnapshot(snapshot); err != nil {
		fail(ctx, iris.StatusBadRequest, err)
		return
	}

	server.app.Logger().Infof("session %d: stream state replaced", session.ID())
	ctx.StatusCode(iris.StatusNoContent)
}

func main() {
	var cfg config.Service
	if err := config.Load(&cfg); err != nil {
		golog.Fatalf("loading configuration failed: %s", err)
	}

	seed, haveSeed, err := cfg.Harness.FixedSeed()
	if err != nil {
		golog.Fatalf("%s", err)
	}

	var fixedSeed *uint32
	if haveSeed {
		fixedSeed = &seed
	}

	recorder, err := ingest.NewRecorder(cfg.Database, cfg.Broker, util.NewLogger("[ingest] ", cfg.Harness.LogLevel))
	if err != nil {
		golog.Fatalf("creating the recorder failed: %s", err)
	}

	if err = recorder.Start(cfg.Harness.Workers); err != nil {
		golog.Fatalf("starting the recorder failed: %s", err)
	}

	server := NewServer(recorder, fixedSeed, cfg.Harness.LogLevel)

	if err := server.app.Listen(cfg.Harness.Listen); err != nil {
		server.app.Logger().Errorf("listen: %s", err)
	}

	if err := recorder.Stop(); err != nil {
		golog.Fatalf("stopping the recorder: %s", err)
	}
}
