package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	trafficcount "github.com/swdee/go-trafficcount"
	"github.com/swdee/go-trafficcount/postprocess"
	"github.com/swdee/go-trafficcount/preprocess"
	"github.com/swdee/go-trafficcount/render"
	"github.com/swdee/go-trafficcount/report"
	"github.com/swdee/go-trafficcount/tracker"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
)

// frameWidth is the width video frames are resized to before detection,
// the pixel distances in the tracker params are relative to it
const frameWidth = 700

// capturedFrame is a resized video frame and its position in the video
type capturedFrame struct {
	img gocv.Mat
	ts  time.Time
}

// detectedFrame is a frame with its detections
type detectedFrame struct {
	capturedFrame
	dets []postprocess.DetectResult
}

// Demo defines the struct for running the traffic counting demo
type Demo struct {
	// video is the source being counted
	video *gocv.VideoCapture
	// net is the MobileNet-SSD Caffe model
	net gocv.Net
	// ssd decodes the model output
	ssd *postprocess.MobileNetSSD
	// resizer scales video frames to frameWidth
	resizer *preprocess.Resizer
	// counter runs tracking, counting and classification
	counter *trafficcount.Counter
	// trail keeps the centroid history of tracks for drawing
	trail *tracker.Trail
	// hub publishes updates to websocket clients
	hub *report.Hub
	// recorder keeps every window for the chart
	recorder *report.Recorder
	// start is the wall clock time the video position is offset from
	start time.Time

	// latest JPEG encoded annotated frame served to MJPEG clients
	mu     sync.RWMutex
	latest []byte
	seq    int
}

// NewDemo opens the video and model and creates the counting pipeline
func NewDemo(vidFile, protoFile, modelFile, labelFile string,
	cfg trafficcount.Config) (*Demo, error) {

	video, err := gocv.VideoCaptureFile(vidFile)

	if err != nil {
		return nil, fmt.Errorf("error opening video: %w", err)
	}

	net := gocv.ReadNetFromCaffe(protoFile, modelFile)

	if net.Empty() {
		video.Close()
		return nil, fmt.Errorf("error reading network model from %s, %s", protoFile, modelFile)
	}

	params := postprocess.MobileNetSSDVOCParams()

	if labelFile != "" {
		params.Labels, err = postprocess.LoadLabels(labelFile)

		if err != nil {
			video.Close()
			net.Close()
			return nil, fmt.Errorf("error loading model labels: %w", err)
		}
	}

	if err := cfg.ValidateLabels(params.Labels); err != nil {
		video.Close()
		net.Close()
		return nil, err
	}

	// the tracker applies the per category thresholds, the decoder only
	// drops what no category would accept
	params.BoxThreshold = cfg.Classes.MinConfidence()

	d := &Demo{
		video:    video,
		net:      net,
		ssd:      postprocess.NewMobileNetSSD(params),
		trail:    tracker.NewTrail(30),
		hub:      report.NewHub(),
		recorder: &report.Recorder{},
		start:    time.Now(),
	}

	d.resizer = preprocess.NewResizer(
		int(video.Get(gocv.VideoCaptureFrameWidth)),
		int(video.Get(gocv.VideoCaptureFrameHeight)),
		frameWidth,
	)

	d.counter, err = trafficcount.New(cfg, d.start)

	if err != nil {
		d.Close()
		return nil, fmt.Errorf("error creating counter: %w", err)
	}

	log.Printf("Counting %v in %dx%d frames, window %s",
		cfg.Classes.Labels(), d.resizer.DestWidth(), d.resizer.DestHeight(), cfg.Window)

	return d, nil
}

// AddSink registers a window sink alongside the log, hub and chart recorder
func (d *Demo) AddSink(s report.Sink) {
	d.counter.AddListener(s)
}

// Close frees the video and model
func (d *Demo) Close() {
	d.video.Close()
	d.net.Close()
}

// Run reads, detects and counts every frame of the video in order.  Capture,
// detection and counting each run in their own goroutine connected by
// channels so frames reach the counter in video order
func (d *Demo) Run(ctx context.Context) error {

	d.counter.AddListener(report.LogSink{})
	d.counter.AddListener(d.hub)
	d.counter.AddListener(d.recorder)

	g, ctx := errgroup.WithContext(ctx)

	captured := make(chan capturedFrame, 4)
	detected := make(chan detectedFrame, 4)

	g.Go(func() error {
		defer close(captured)
		return d.capture(ctx, captured)
	})

	g.Go(func() error {
		defer close(detected)
		return d.detect(ctx, captured, detected)
	})

	g.Go(func() error {
		return d.count(detected)
	})

	return g.Wait()
}

// capture reads and resizes video frames
func (d *Demo) capture(ctx context.Context, out chan<- capturedFrame) error {

	img := gocv.NewMat()
	defer img.Close()

	for {
		// read the next frame from the video
		if ok := d.video.Read(&img); !ok {
			// reached last video frame
			return nil
		}

		if img.Empty() {
			continue
		}

		// timestamp frames by their position in the video so windows are
		// measured in video time
		pos := time.Duration(d.video.Get(gocv.VideoCapturePosMsec) * float64(time.Millisecond))

		resized := gocv.NewMat()
		d.resizer.Resize(img, &resized)

		select {
		case out <- capturedFrame{img: resized, ts: d.start.Add(pos)}:
		case <-ctx.Done():
			resized.Close()
			return ctx.Err()
		}
	}
}

// detect runs MobileNet-SSD on each frame
func (d *Demo) detect(ctx context.Context, in <-chan capturedFrame,
	out chan<- detectedFrame) error {

	for frame := range in {

		dets, err := d.detectObjects(frame.img)

		if err != nil {
			frame.img.Close()
			return err
		}

		select {
		case out <- detectedFrame{capturedFrame: frame, dets: dets}:
		case <-ctx.Done():
			frame.img.Close()
			return ctx.Err()
		}
	}

	return nil
}

// detectObjects takes a resized video frame and runs inference on it
func (d *Demo) detectObjects(img gocv.Mat) ([]postprocess.DetectResult, error) {

	blob := preprocess.Blob(img, preprocess.MobileNetSSDBlobParams())
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()

	if err != nil {
		return nil, fmt.Errorf("error reading detection output: %w", err)
	}

	return d.ssd.DetectObjects(data, img.Cols(), img.Rows()), nil
}

// count feeds the frames to the counter, annotates them and publishes the
// result
func (d *Demo) count(in <-chan detectedFrame) error {

	var last time.Time
	lastPublish := time.Time{}

	for frame := range in {

		res, err := d.counter.ProcessFrame(frame.dets, frame.ts)

		if err != nil {
			frame.img.Close()
			return fmt.Errorf("error processing frame: %w", err)
		}

		for _, tr := range res.Tracks {
			d.trail.Add(tr)
		}

		for _, tr := range res.Evicted {
			d.trail.Remove(tr.GetTrackID())
		}

		stats := render.NewStats(d.counter, frame.ts)

		if err := d.annotate(&frame.img, res, stats); err != nil {
			log.Printf("Error annotating frame: %v", err)
		}

		frame.img.Close()

		if len(res.Counted) > 0 || frame.ts.Sub(lastPublish) >= time.Second {
			d.hub.Publish("stats", stats)
			lastPublish = frame.ts
		}

		last = frame.ts
	}

	if last.IsZero() {
		return nil
	}

	if _, err := d.counter.Flush(last); err != nil {
		return fmt.Errorf("error flushing final window: %w", err)
	}

	counts := d.counter.Counts()
	log.Printf("Video finished, counted %d vehicles %v", counts.Total, counts.PerType)

	return nil
}

// annotate draws the tracks and stats panel on the frame and stores it as the
// latest JPEG for streaming
func (d *Demo) annotate(img *gocv.Mat, res *trafficcount.FrameResult,
	stats render.Stats) error {

	render.Region(img, d.counter.Region(), render.Yellow, 1)
	render.Trail(img, res.Tracks, d.trail, render.DefaultTrailStyle())
	render.TrackerBoxes(img, res.Tracks, render.DefaultFont(), 1)

	if err := render.Overlay(img, stats); err != nil {
		return err
	}

	buf, err := gocv.IMEncode(".jpg", *img)

	if err != nil {
		return fmt.Errorf("error encoding frame: %w", err)
	}

	defer buf.Close()

	jpg := make([]byte, buf.Len())
	copy(jpg, buf.GetBytes())

	d.mu.Lock()
	d.latest = jpg
	d.seq++
	d.mu.Unlock()

	return nil
}

// Stream is the HTTP handler function used to stream video frames to browser
func (d *Demo) Stream(w http.ResponseWriter, r *http.Request) {

	log.Printf("New client connection established\n")

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")

	ticker := time.NewTicker(30 * time.Millisecond)
	defer ticker.Stop()

	sent := -1

	for {
		select {
		case <-r.Context().Done():
			log.Printf("Client disconnected\n")
			return

		case <-ticker.C:
			d.mu.RLock()
			jpg, seq := d.latest, d.seq
			d.mu.RUnlock()

			if jpg == nil || seq == sent {
				continue
			}

			sent = seq

			// Write the image to the response writer
			w.Write([]byte("--frame\r\n"))
			w.Write([]byte("Content-Type: image/jpeg\r\n\r\n"))
			w.Write(jpg)
			w.Write([]byte("\r\n"))

			// Flush the buffer
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// getEnv returns the environment variable or the default value when unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the environment variable as an int or the default value
// when unset or invalid
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// optional .env file provides flag defaults
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file: %v", err)
	}

	// read in cli flags
	vidFile := flag.String("v", getEnv("TRAFFIC_VIDEO", "../data/traffic.mp4"), "Video file to count vehicles in")
	protoFile := flag.String("p", getEnv("TRAFFIC_PROTOTXT", "../data/MobileNetSSD_deploy.prototxt"), "Caffe prototxt of the MobileNet-SSD model")
	modelFile := flag.String("m", getEnv("TRAFFIC_MODEL", "../data/MobileNetSSD_deploy.caffemodel"), "Caffe MobileNet-SSD model weights")
	labelFile := flag.String("l", getEnv("TRAFFIC_LABELS", ""), "Text file containing model labels, defaults to Pascal VOC")
	cfgFile := flag.String("c", getEnv("TRAFFIC_CONFIG", ""), "JSON config file of counting parameters")
	httpAddr := flag.String("a", getEnv("TRAFFIC_ADDR", "localhost:8080"), "HTTP Address to run server on, format address:port")
	dbFile := flag.String("db", getEnv("TRAFFIC_DB", ""), "SQLite database file to record windows to")
	chartFile := flag.String("chart", getEnv("TRAFFIC_CHART", ""), "HTML file to write a chart of the windows to when the video ends")
	hour := flag.Int("hour", getEnvAsInt("TRAFFIC_HOUR", -1), "Fix the hour of day used to classify windows, -1 uses the clock")

	flag.Parse()

	cfg := trafficcount.DefaultConfig()

	if *cfgFile != "" {
		var err error
		cfg, err = trafficcount.LoadConfig(*cfgFile)

		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
	}

	if *hour >= 0 {
		cfg.Hour = hour
	}

	demo, err := NewDemo(*vidFile, *protoFile, *modelFile, *labelFile, cfg)

	if err != nil {
		log.Fatalf("Error creating demo: %v", err)
	}

	defer demo.Close()

	if *dbFile != "" {
		store, err := report.OpenSQLite(*dbFile)

		if err != nil {
			log.Fatalf("Error opening database: %v", err)
		}

		defer store.Close()

		demo.AddSink(store)
		log.Printf("Recording windows to %s, session %s", *dbFile, store.Session())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/stream", demo.Stream)
	mux.Handle("/ws", demo.hub)

	srv := &http.Server{Addr: *httpAddr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return demo.hub.Run(ctx)
	})

	g.Go(func() error {
		log.Printf("Open browser and view video at http://%s/stream", *httpAddr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if err := demo.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}

		if *chartFile != "" {
			if err := writeChart(*chartFile, demo.recorder.Reports()); err != nil {
				return err
			}
			log.Printf("Chart written to %s", *chartFile)
		}

		log.Printf("Still serving the last frame, press Ctrl-C to exit")
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// writeChart renders the windows to an HTML file
func writeChart(path string, reports []trafficcount.WindowReport) error {

	f, err := os.Create(path)

	if err != nil {
		return fmt.Errorf("error creating chart file: %w", err)
	}

	defer f.Close()

	return report.WriteChart(f, reports)
}
