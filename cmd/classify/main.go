// Command classify prints the detected angle and ASL letter for image files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/anime-shed/asl-inspector-go/internal/analyzer"
	"github.com/anime-shed/asl-inspector-go/internal/classifier"
	"github.com/anime-shed/asl-inspector-go/internal/factory"
	"github.com/anime-shed/asl-inspector-go/internal/logger"
	"github.com/anime-shed/asl-inspector-go/internal/observer"
	"github.com/anime-shed/asl-inspector-go/internal/service"
	"github.com/anime-shed/asl-inspector-go/pkg/models"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type line struct {
	File     string                      `json:"file"`
	Angle    *float64                    `json:"detected_angle_degrees"`
	Letter   models.Label                `json:"predicted_letter"`
	Reason   string                      `json:"reason,omitempty"`
	Error    string                      `json:"error,omitempty"`
	Pipeline *models.PipelineDiagnostics `json:"diagnostics,omitempty"`
}

// run classifies every file argument. It returns 1 when any file could not
// be read or decoded and 2 on usage errors.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("classify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backend := fs.String("backend", analyzer.BackendNative, "extractor backend (native or opencv)")
	workers := fs.Int("workers", 0, "parallel workers, 0 uses one per CPU")
	asJSON := fs.Bool("json", false, "print one JSON object per file")
	detailed := fs.Bool("detailed", false, "include pipeline diagnostics (JSON output only)")
	verbose := fs.Bool("v", false, "log classification events to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: classify [flags] image...")
		fs.PrintDefaults()
		return 2
	}

	extractor, err := factory.NewExtractorFactory(analyzer.DefaultOptions()).CreateExtractor(factory.ExtractorBackend(*backend))
	if err != nil {
		fmt.Fprintf(stderr, "classify: %v\n", err)
		return 2
	}

	events := observer.NewEventPublisher()
	if *verbose {
		logger.SetOutput(stderr)
		logger.Configure("debug", "text")
		events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	}

	pool := analyzer.NewWorkerPool(*workers)
	pool.Start()
	defer pool.Close()

	svc := service.NewClassificationService(nil, extractor, classifier.New(), pool, events, service.Settings{})

	status := 0
	inputs := make([]service.BatchInput, 0, fs.NArg())
	lines := make([]line, fs.NArg())
	slots := make([]int, 0, fs.NArg())
	for i, path := range fs.Args() {
		lines[i].File = path
		data, err := os.ReadFile(path)
		if err != nil {
			lines[i].Error = err.Error()
			lines[i].Letter = models.LabelUnknown
			status = 1
			continue
		}
		inputs = append(inputs, service.BatchInput{Name: filepath.Base(path), Data: data})
		slots = append(slots, i)
	}

	outcomes := svc.ClassifyBatch(context.Background(), inputs, service.ClassifyOptions{Detailed: *detailed && *asJSON})
	for k, outcome := range outcomes {
		l := &lines[slots[k]]
		if outcome.Err != nil {
			l.Error = outcome.Err.Error()
			l.Letter = models.LabelUnknown
			status = 1
			continue
		}
		if angle, ok := models.Degrees(outcome.Result.Orientation); ok {
			rounded := math.Round(angle*100) / 100
			l.Angle = &rounded
		}
		l.Letter = outcome.Result.Label
		l.Reason = outcome.Result.Reason
		l.Pipeline = outcome.Result.Diagnostics
	}

	enc := json.NewEncoder(stdout)
	for _, l := range lines {
		if *asJSON {
			if err := enc.Encode(l); err != nil {
				fmt.Fprintf(stderr, "classify: %v\n", err)
				return 1
			}
			continue
		}
		switch {
		case l.Error != "":
			fmt.Fprintf(stdout, "%s\terror\t%s\n", l.File, l.Error)
		case l.Angle == nil:
			fmt.Fprintf(stdout, "%s\t-\t%s\t%s\n", l.File, l.Letter, l.Reason)
		default:
			fmt.Fprintf(stdout, "%s\t%.2f\t%s\n", l.File, *l.Angle, l.Letter)
		}
	}
	return status
}
