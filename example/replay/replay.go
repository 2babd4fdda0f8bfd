package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	trafficcount "github.com/swdee/go-trafficcount"
	"github.com/swdee/go-trafficcount/postprocess"
	"github.com/swdee/go-trafficcount/report"
)

// maxLineSize is the largest detection record accepted
const maxLineSize = 1 << 20

// record is a single line of a detection log, the detections made on one
// video frame and when the frame was captured
type record struct {
	TS         time.Time                  `json:"ts"`
	Detections []postprocess.DetectResult `json:"detections"`
}

// replay feeds every record read from r to a counter in order.  The counter
// is created on the first record so the first window opens on the first frame
func replay(r io.Reader, cfg trafficcount.Config,
	listener trafficcount.WindowListener) (*trafficcount.Counter, time.Time, int, error) {

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var counter *trafficcount.Counter
	var last time.Time
	frames := 0
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var rec record

		if err := json.Unmarshal(line, &rec); err != nil {
			return counter, last, frames, fmt.Errorf("line %d: error parsing record: %w", lineNo, err)
		}

		if counter == nil {
			var err error
			counter, err = trafficcount.New(cfg, rec.TS)

			if err != nil {
				return nil, last, frames, fmt.Errorf("error creating counter: %w", err)
			}

			counter.AddListener(listener)

		} else if rec.TS.Before(last) {
			return counter, last, frames, fmt.Errorf("line %d: timestamp %s before previous frame %s",
				lineNo, rec.TS.Format(time.RFC3339Nano), last.Format(time.RFC3339Nano))
		}

		if _, err := counter.ProcessFrame(rec.Detections, rec.TS); err != nil {
			return counter, last, frames, fmt.Errorf("line %d: %w", lineNo, err)
		}

		last = rec.TS
		frames++
	}

	if err := scanner.Err(); err != nil {
		return counter, last, frames, fmt.Errorf("error reading detections: %w", err)
	}

	return counter, last, frames, nil
}

// getEnv returns the environment variable or the default value when unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}

	// read in cli flags
	inFile := flag.String("i", getEnv("TRAFFIC_DETECTIONS", "../data/detections.jsonl"), "JSON lines detection log to replay, - for stdin")
	cfgFile := flag.String("c", getEnv("TRAFFIC_CONFIG", ""), "JSON config file of counting parameters")
	dbFile := flag.String("db", getEnv("TRAFFIC_DB", ""), "SQLite database file to record windows to")
	chartFile := flag.String("chart", getEnv("TRAFFIC_CHART", ""), "HTML file to write a chart of the windows to")
	quiet := flag.Bool("q", false, "Only log window reports and totals")

	flag.Parse()

	cfg := trafficcount.DefaultConfig()

	if *cfgFile != "" {
		var err error
		cfg, err = trafficcount.LoadConfig(*cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	var in io.Reader = os.Stdin

	if *inFile != "-" {
		f, err := os.Open(*inFile)

		if err != nil {
			log.Fatalf("Error opening detections: %v", err)
		}

		defer f.Close()
		in = f
	}

	if *quiet {
		trafficcount.SetLogger(nil)
	}

	recorder := &report.Recorder{}
	sinks := report.MultiSink{report.LogSink{Logf: log.Printf}, recorder}

	if *dbFile != "" {
		store, err := report.OpenSQLite(*dbFile)

		if err != nil {
			log.Fatalf("Error opening database: %v", err)
		}

		defer store.Close()

		sinks = append(sinks, store)
		log.Printf("Recording windows to %s, session %s", *dbFile, store.Session())
	}

	counter, last, frames, err := replay(in, cfg, sinks)

	if err != nil {
		log.Fatalf("Error replaying detections: %v", err)
	}

	if counter == nil {
		log.Fatalf("No detection records in %s", *inFile)
	}

	if _, err := counter.Flush(last); err != nil {
		log.Fatalf("Error flushing final window: %v", err)
	}

	counts := counter.Counts()

	log.Printf("Replayed %d frames, %d windows", frames, len(recorder.Reports()))

	for _, label := range cfg.Classes.Labels() {
		log.Printf("%s: %d", label, counts.PerType[label])
	}

	log.Printf("total: %d", counts.Total)

	if *chartFile != "" {
		f, err := os.Create(*chartFile)

		if err != nil {
			log.Fatalf("Error creating chart file: %v", err)
		}

		defer f.Close()

		if err := report.WriteChart(f, recorder.Reports()); err != nil {
			log.Fatalf("Error writing chart: %v", err)
		}

		log.Printf("Chart written to %s", *chartFile)
	}
}
