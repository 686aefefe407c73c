package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/kataras/golog"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/config"
	"github.com/xor-shift/octorand/generate"
	"github.com/xor-shift/octorand/ingest"
	"github.com/xor-shift/octorand/random"
	"github.com/xor-shift/octorand/util"
	"github.com/xor-shift/octorand/util/rng"
)

// parseGenerators turns "name" or "name:count" arguments into requests.
func parseGenerators(args []string) ([]common.Request, error) {
	requests := make([]common.Request, 0, len(args))

	for _, arg := range args {
		name, countText, hasCount := strings.Cut(arg, ":")

		request := common.Request{Generator: name}

		if hasCount {
			count, err := strconv.Atoi(countText)
			if err != nil {
				return nil, fmt.Errorf("%w: bad count in %q", common.ErrBadRequest, arg)
			}

			request.Count = count
		}

		if err := request.Validate(); err != nil {
			return nil, err
		}

		requests = append(requests, request)
	}

	return requests, nil
}

// produce builds count cases for one session, handing each to sink as soon as it exists.
func produce(r *random.Random, sessionID uint, count uint, requests []common.Request, sink func(common.Case) error) error {
	for seq := uint(0); seq < count; seq++ {
		c, err := generate.BuildCase(r, common.CaseHeader{SessionID: sessionID, Sequence: seq}, requests)
		if err != nil {
			return fmt.Errorf("case %d: %w", seq, err)
		}

		if err = sink(c); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	args := struct {
		Seed    string   `name:"seed" short:"s" help:"Seed for the session (decimal or 0x-prefixed). Falls back to OCTO_SEED, then the clock"`
		Count   uint     `name:"count" short:"c" default:"16" help:"Number of cases to produce"`
		Gen     []string `name:"gen" short:"g" required:"" help:"Generator to run for every case, as name or name:count"`
		Workers uint     `name:"workers" short:"w" default:"1" help:"Number of publishing workers"`
		DryRun  bool     `name:"dry-run" help:"Print the cases as JSON lines instead of recording them"`
		List    bool     `name:"list" help:"List the generator names and exit"`
	}{}

	_ = kong.Parse(&args, kong.Description("Produces reproducible random test cases."))

	if args.List {
		for _, name := range generate.Names() {
			fmt.Println(name)
		}
		return
	}

	var cfg config.Service
	if err := config.Load(&cfg); err != nil {
		golog.Fatalf("loading configuration failed: %s", err)
	}

	logger := util.NewLogger("[producer] ", cfg.Harness.LogLevel)

	requests, err := parseGenerators(args.Gen)
	if err != nil {
		logger.Fatalf("%s", err)
	}

	seedText := args.Seed
	if seedText == "" {
		seedText = cfg.Harness.Seed
	}

	seed, haveSeed, err := config.ParseSeed(seedText)
	if err != nil {
		logger.Fatalf("%s", err)
	}

	var r *random.Random
	if haveSeed {
		r = random.New(seed)
	} else {
		r = random.NewFromClock()
	}

	if args.DryRun {
		encoder := json.NewEncoder(os.Stdout)
		if err = produce(r, 0, args.Count, requests, func(c common.Case) error {
			return encoder.Encode(c)
		}); err != nil {
			logger.Fatalf("%s", err)
		}
		return
	}

	recorder, err := ingest.NewRecorder(cfg.Database, cfg.Broker, util.NewLogger("[ingest] ", cfg.Harness.LogLevel))
	if err != nil {
		logger.Fatalf("creating the recorder failed: %s", err)
	}

	if err = recorder.Start(args.Workers); err != nil {
		logger.Fatalf("starting the recorder failed: %s", err)
	}

	sessionID, err := recorder.StartSession(context.Background(), r.Seed(), rng.SeedDigest(r.Seed()))
	if err != nil {
		_ = recorder.Stop()
		logger.Fatalf("starting a session failed: %s", err)
	}

	logger.Infof("session %d: producing %d cases with seed %d", sessionID, args.Count, r.Seed())

	produceErr := produce(r, sessionID, args.Count, requests, func(c common.Case) error {
		return recorder.NewCases([]common.Case{c})
	})

	if err = recorder.Stop(); err != nil {
		logger.Errorf("stopping the recorder: %s", err)
	}

	if produceErr != nil {
		logger.Fatalf("session %d: %s", sessionID, produceErr)
	}

	logger.Infof("session %d: done", sessionID)
}
