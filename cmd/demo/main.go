package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/term"

	pollloop "github.com/wippyai/poll-loop"
	"github.com/wippyai/poll-loop/host"
	"github.com/wippyai/poll-loop/metrics"
)

func main() {
	var (
		method      = flag.String("method", "GET", "Request method")
		path        = flag.String("path", "/hello", "Request path")
		body        = flag.String("body", "", "Request body")
		chunks      = flag.Int("chunks", 1, "Deliver the body in this many chunks with a suspension between each")
		slowWriter  = flag.Bool("slow-writer", false, "Make the response channel block between accepts")
		verbose     = flag.Bool("v", false, "Verbose scheduler logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*method, *path, *body, *chunks, *slowWriter, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// request is one simulated inbound request: its route plus a readable
// handle carrying the body.
type request struct {
	Method string
	Path   string
	Body   host.Handle
}

// outcome is everything one run of the scheduler produced, for display.
type outcome struct {
	Response string
	Rounds   []pollloop.Round
	Polls    int
}

func run(method, path, body string, chunks int, slowWriter, verbose bool) error {
	log := zap.NewNop()
	if verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer dev.Sync()
		log = dev
	}

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	if err := collector.Register(registry); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	res, err := serveOnce(method, path, body, chunks, slowWriter, log, collector.Observe)
	if err != nil {
		return err
	}

	width := 80
	if w, _, werr := term.GetSize(int(os.Stdout.Fd())); werr == nil && w > 0 {
		width = w
	}

	fmt.Printf("Request:  %s %s\n", method, path)
	if body != "" {
		fmt.Printf("Body:     %s\n", clamp(body, width-10))
	}
	fmt.Printf("Response: %s\n", clamp(res.Response, width-10))

	fmt.Printf("\nReadiness rounds: %d\n", res.Polls)
	for _, r := range res.Rounds {
		fmt.Printf("  round %d: polled %d, ready %v, resumed %d frame(s), waited %s\n",
			r.Seq, len(r.Polled), r.Ready, len(r.Resumed), r.Waited)
	}

	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Printf("\nMetrics:\n")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				fmt.Printf("  %s: %v\n", mf.GetName(), c.GetValue())
			}
		}
	}
	return nil
}

// serveOnce builds a scripted host for the request, drives the handler
// on a fresh loop, and returns the response with the recorded rounds.
func serveOnce(method, path, body string, chunks int, slowWriter bool, log *zap.Logger, observe func(pollloop.Round)) (outcome, error) {
	h := host.NewLocal()

	req := request{
		Method: method,
		Path:   path,
		Body:   h.NewReadable(bodyScript(body, chunks)...),
	}

	var writeSteps []host.WriteStep
	if slowWriter {
		writeSteps = []host.WriteStep{host.Accept(8), host.WriteBlock(), host.Accept(8), host.WriteBlock()}
	}
	out := h.NewWritable(writeSteps...)

	var rounds []pollloop.Round
	loop := pollloop.New(h,
		pollloop.WithLogger(log),
		pollloop.WithRoundObserver(func(r pollloop.Round) {
			rounds = append(rounds, r)
			if observe != nil {
				observe(r)
			}
		}),
	)

	err := loop.RunUntilComplete(context.Background(), func(ctx context.Context) error {
		return serve(ctx, loop, req, out)
	})
	if err != nil {
		return outcome{}, fmt.Errorf("serve: %w", err)
	}

	return outcome{
		Response: string(h.Written(out)),
		Rounds:   rounds,
		Polls:    h.PollCalls(),
	}, nil
}

// bodyScript splits the body into n chunks with a suspension before
// each chunk after the first.
func bodyScript(body string, n int) []host.ReadStep {
	if body == "" {
		return nil
	}
	if n < 1 {
		n = 1
	}
	size := (len(body) + n - 1) / n

	var steps []host.ReadStep
	for i := 0; i < len(body); i += size {
		end := i + size
		if end > len(body) {
			end = len(body)
		}
		if i > 0 {
			steps = append(steps, host.Block())
		}
		steps = append(steps, host.Text(body[i:end]))
	}
	return steps
}

// serve routes one request and writes the full response through a sink.
func serve(ctx context.Context, loop *pollloop.PollLoop, req request, out host.Handle) error {
	sink := pollloop.NewSink(loop, out)

	status, body, err := route(ctx, loop, req)
	if err != nil {
		return err
	}
	if err := sink.SendString(ctx, fmt.Sprintf("%d %s\n", status, statusText(status))); err != nil {
		return err
	}
	if len(body) > 0 {
		if err := sink.Send(ctx, body); err != nil {
			return err
		}
	}
	return sink.Close()
}

func route(ctx context.Context, loop *pollloop.PollLoop, req request) (int, []byte, error) {
	if req.Method != "GET" {
		return 400, nil, nil
	}
	if req.Path == "/hello" {
		return 200, []byte("Hello, world!"), nil
	}
	return delegate(ctx, loop, req)
}

// delegate handles every GET outside /hello: it drains the request body
// and echoes it back under the requested path.
func delegate(ctx context.Context, loop *pollloop.PollLoop, req request) (int, []byte, error) {
	body, err := pollloop.NewStream(loop, req.Body).ReadAll(ctx)
	if err != nil {
		return 0, nil, err
	}
	reply := fmt.Sprintf("delegated %s: %s", req.Path, body)
	return 200, []byte(reply), nil
}

func statusText(status int) string {
	switch status {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	default:
		return "Unknown"
	}
}

func clamp(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	if width < 8 {
		width = 8
	}
	if len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
