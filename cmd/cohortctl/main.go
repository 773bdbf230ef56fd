package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/aaronyarm/moveclub-cohort-ultra/internal/config"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/engine"
	"github.com/aaronyarm/moveclub-cohort-ultra/internal/ingest"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	input := flag.String("input", "", "Path to the payments CSV export")
	cfgPath := flag.String("config", "", "Optional analytics YAML config")
	out := flag.String("o", "", "Output path for the JSON report (default: stdout)")
	window := flag.Int("window", 0, "Trailing window in days (0 = whole dataset)")
	verbose := flag.Bool("v", false, "Verbose mode")
	flag.Parse()

	if *input == "" {
		log.Fatalf("usage: cohortctl -input payments.csv [-config analytics.yaml] [-o report.json]")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		loader, err := config.NewLoader(*cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loader.Config()
		if err := config.Validate(cfg); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		log.Fatalf("stat input: %v", err)
	}
	bar := progressbar.DefaultBytes(fi.Size(), "ingesting")
	headers, records, err := ingest.Read(io.TeeReader(f, bar))
	if err != nil {
		log.Fatalf("ingest: %v", err)
	}
	_ = bar.Finish()
	if *verbose {
		log.Printf("[INFO] ingested rows=%d columns=%d", len(records), len(headers))
	}

	eng := engine.New(config.NewStatic(cfg))
	report, err := eng.Process(records, engine.Options{Headers: headers, WindowDays: *window})
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}
	if *verbose {
		log.Printf("[INFO] cohorts=%d customers=%d trials=%d paid=%d duration=%dms",
			len(report.Cohort.Cohorts),
			report.Enhanced.Summary.TotalCustomers,
			report.Cohort.Summary.TotalTrials,
			report.Cohort.Summary.TotalPaid,
			report.DurationMs)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("encode report: %v", err)
	}
	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	if *verbose {
		log.Printf("[INFO] report written to %s", *out)
	}
}
