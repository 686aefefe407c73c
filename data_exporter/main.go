package main

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/template"

	"github.com/alecthomas/kong"
	"github.com/kataras/golog"

	"github.com/xor-shift/octorand/common"
	"github.com/xor-shift/octorand/config"
	"github.com/xor-shift/octorand/generate"
	"github.com/xor-shift/octorand/util"
)

const (
	sessionQuery = "SELECT seed FROM sessions WHERE session_id=?"
	casesQuery   = "SELECT seq, seed, digest, requests, fields FROM cases WHERE session_id=? ORDER BY seq"
)

func loadSession(db *sql.DB, sessionID uint) (seed uint32, cases []common.Case, err error) {
	if err = db.QueryRow(sessionQuery, sessionID).Scan(&seed); err != nil {
		return 0, nil, fmt.Errorf("session %d: %w", sessionID, err)
	}

	rows, err := db.Query(casesQuery, sessionID)
	if err != nil {
		return 0, nil, err
	}

	defer rows.Close()

	for i := 0; rows.Next(); i++ {
		c := common.Case{CaseHeader: common.CaseHeader{SessionID: sessionID}}

		var requestsString string
		var fieldsString string

		if err = rows.Scan(&c.Sequence, &c.Seed, &c.StateDigest, &requestsString, &fieldsString); err != nil {
			return 0, nil, fmt.Errorf("error while reading row %d of session %d: %w", i, sessionID, err)
		}

		if err = json.Unmarshal([]byte(requestsString), &c.Requests); err != nil {
			return 0, nil, fmt.Errorf("error while parsing the requests of row %d of session %d: %w", i, sessionID, err)
		}

		if err = json.Unmarshal([]byte(fieldsString), &c.Fields); err != nil {
			return 0, nil, fmt.Errorf("error while parsing the fields of row %d of session %d: %w", i, sessionID, err)
		}

		cases = append(cases, c)
	}

	return seed, cases, rows.Err()
}

func outputName(pattern string, sessionID uint) (string, error) {
	tmpl, err := template.New("").Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("error while creating the output filename template: %w", err)
	}

	buf := bytes.Buffer{}

	if err = tmpl.Execute(&buf, struct{ SessionNo uint }{SessionNo: sessionID}); err != nil {
		return "", fmt.Errorf("error while executing the output filename template: %w", err)
	}

	return buf.String(), nil
}

// writeCSV writes one row per generated field.
func writeCSV(w io.Writer, cases []common.Case, columnTitles bool) error {
	csvWriter := csv.NewWriter(w)

	if columnTitles {
		_ = csvWriter.Write([]string{
			"Session",
			"Sequence",
			"Seed",
			"State Digest",
			"Field",
			"Generator",
			"Value",
		})
	}

	for _, c := range cases {
		for i, field := range c.Fields {
			_ = csvWriter.Write([]string{
				strconv.FormatUint(uint64(c.SessionID), 10),
				strconv.FormatUint(uint64(c.Sequence), 10),
				strconv.FormatUint(uint64(c.Seed), 10),
				util.ArrayToString([]uint64{c.StateDigest}),
				strconv.Itoa(i),
				field.Generator,
				field.Value,
			})
		}
	}

	csvWriter.Flush()

	return csvWriter.Error()
}

func writeJSON(w io.Writer, cases []common.Case) error {
	if cases == nil {
		cases = []common.Case{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(cases)
}

func main() {
	args := struct {
		Session            uint   `name:"session" short:"s" help:"session number to export" required:""`
		Out                string `name:"out" short:"o" default:"session_{{.SessionNo}}.csv" help:"File to output to (templated)"`
		Format             string `name:"format" short:"f" enum:"csv,json" default:"csv" help:"Data format"`
		ExportColumnTitles bool   `name:"export_column_titles" negatable:"" default:"true" help:"(applicable only to CSV outputs) whether to include column titles for CSV exports"`
		Verify             bool   `name:"verify" help:"Regenerate the session from its seed and check it against the stored cases before exporting"`
	}{}

	_ = kong.Parse(&args)

	var cfg config.Service
	if err := config.Load(&cfg); err != nil {
		golog.Fatalf("loading configuration failed: %s", err)
	}

	logger := util.NewLogger("[data_exporter] ", cfg.Harness.LogLevel)

	mysqlConfig := cfg.Database.MySQL()
	db, err := sql.Open("mysql", mysqlConfig.FormatDSN())
	if err != nil {
		logger.Fatalf("%s", err)
	}

	seed, cases, err := loadSession(db, args.Session)
	_ = db.Close()
	if err != nil {
		logger.Fatalf("%s", err)
	}

	logger.Infof("session %d: %d cases, seed %d", args.Session, len(cases), seed)

	if args.Verify {
		if err = generate.Replay(seed, cases); err != nil {
			logger.Fatalf("session %d does not replay: %s", args.Session, err)
		}

		logger.Infof("session %d replays cleanly", args.Session)
	}

	outFileName, err := outputName(args.Out, args.Session)
	if err != nil {
		logger.Fatalf("%s", err)
	}

	outFile, err := os.Create(outFileName)
	if err != nil {
		logger.Fatalf("error while creating the output file \"%s\": %s", outFileName, err)
	}

	switch args.Format {
	case "json":
		err = writeJSON(outFile, cases)
	default:
		err = writeCSV(outFile, cases, args.ExportColumnTitles)
	}

	if closeErr := outFile.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		logger.Fatalf("writing %s: %s", outFileName, err)
	}
}
