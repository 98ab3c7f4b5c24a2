// Command predict classifies a single image from the command line and prints
// one JSON document to stdout: either the prediction or a flat error object.
// It runs the same pipeline as the HTTP server but needs no database, cache,
// or broker.
package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/app"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/config"
	"github.com/AhnafCh/Foot-and-Mouth-Disease-Detection/internal/vision"
)

type predictionOutput struct {
	Prediction string `json:"prediction"`
	Confidence string `json:"confidence"`
}

type errorOutput struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		printJSON(os.Stdout, errorOutput{Error: "No image path provided."})
		os.Exit(1)
	}
	os.Exit(run(os.Args[1], os.Stdout))
}

func run(path string, out io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		printJSON(out, errorOutput{Error: "An error occurred during prediction.", Details: err.Error()})
		return 1
	}

	classifier := vision.NewClassifier(cfg.Model.Path, cfg.Model.ONNXSharedLibPath, cfg.Model.Labels)
	defer classifier.Close()

	svc := app.NewScreeningService(classifier, nil, nil, nil, "")

	data, err := os.ReadFile(path)
	if err != nil {
		printJSON(out, errorOutput{Error: "An error occurred during prediction.", Details: err.Error()})
		return 1
	}

	result, err := svc.Screen(context.Background(), app.ScreenInput{
		Filename: filepath.Base(path),
		Image:    data,
	})
	if err != nil {
		printJSON(out, errorOutput{Error: "An error occurred during prediction.", Details: err.Error()})
		return 1
	}

	printJSON(out, predictionOutput{
		Prediction: result.Prediction.Label,
		Confidence: result.Prediction.ConfidenceString(),
	})
	return 0
}

func printJSON(out io.Writer, v interface{}) {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
