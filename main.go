// Package main provides the stria command: it turns an image into a string-art
// nail sequence and writes the sequence, a preview and a comparison image.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"stria/internal/generator"
	pimage "stria/internal/image"
	"stria/internal/project"
	"stria/internal/report"
	"stria/internal/version"
)

const appTitle = "stria"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	defaults := generator.DefaultParams()
	projectPath := flag.String("project", "", "Path to a project file (.stria.json)")
	imagePath := flag.String("image", "", "Path to source image (PNG, JPEG, TIFF, BMP, WebP)")
	nailCount := flag.Int("nails", defaults.Nails, "Number of nails around the circle (recommended 200-300)")
	maxLines := flag.Int("lines", defaults.MaxLines, "Maximum number of lines (recommended 3000-5000)")
	minDistance := flag.Int("min-distance", defaults.MinDistance, "Minimum nail distance (recommended 15-25)")
	out := flag.String("out", "", "Output prefix (default <image>_stringart)")
	layout := flag.Bool("svg", false, "Also write an SVG thread layout")
	saveProject := flag.String("save-project", "", "Write the effective settings to a project file and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (commit %s, built %s)\n", appTitle, version.Version, version.GitCommit, version.BuildTime)
		return
	}

	params := defaults
	prefix := *out
	withLayout := *layout
	source := *imagePath

	if *projectPath != "" {
		proj, err := project.Load(*projectPath)
		if err != nil {
			log.Fatalf("Failed to load project %s: %v", *projectPath, err)
		}
		params = proj.Params
		if source == "" {
			source = proj.GetImagePath(*projectPath)
		}
		if prefix == "" {
			prefix = proj.GetOutputPrefix(*projectPath)
		}
		withLayout = withLayout || proj.WriteLayout
	}

	// Explicit flags win over the project file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "nails":
			params = params.WithNails(*nailCount)
		case "lines":
			params = params.WithMaxLines(*maxLines)
		case "min-distance":
			params = params.WithMinDistance(*minDistance)
		}
	})

	if source == "" {
		fmt.Println("Usage: stria -image <path> [-nails 200] [-lines 4000] [-min-distance 20] [-out prefix] [-svg]")
		fmt.Println("       stria -project <file.stria.json>")
		os.Exit(1)
	}
	if !pimage.IsSupportedFormat(source) {
		log.Fatalf("Unsupported image format %q (supported: %s)",
			filepath.Ext(source), strings.Join(pimage.SupportedFormats(), " "))
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	if *saveProject != "" {
		if err := writeProject(*saveProject, source, params, *out, withLayout); err != nil {
			log.Fatalf("Failed to save project: %v", err)
		}
		fmt.Printf("Project saved to: %s\n", *saveProject)
		return
	}

	if prefix == "" {
		base := filepath.Base(source)
		prefix = filepath.Join(filepath.Dir(source), strings.TrimSuffix(base, filepath.Ext(base))+"_stringart")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Generating up to %d lines with %d nails (min distance %d)...\n",
		params.MaxLines, params.Nails, params.MinDistance)
	start := time.Now()

	rep, err := report.Run(ctx, report.Request{Path: source, Params: params}, printProgress)
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	files, err := report.WriteFiles(prefix, rep, withLayout)
	if err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}

	fmt.Printf("\n%s\n", rep.Result.Message)
	fmt.Printf("Thread weight: %.3f\n", rep.Generator.Weight)
	fmt.Printf("Sequence saved to: %s\n", files.Sequence)
	fmt.Printf("Preview saved to: %s\n", files.Preview)
	fmt.Printf("Comparison saved to: %s\n", files.Comparison)
	if files.Layout != "" {
		fmt.Printf("Layout saved to: %s\n", files.Layout)
	}
	fmt.Printf("Total time: %.2f seconds\n", time.Since(start).Seconds())
	fmt.Printf("Generated %d lines connecting %d nails\n", rep.Result.Lines, params.Nails)
}

// writeProject records a run's settings so it can be repeated with -project.
func writeProject(path, source string, params generator.Params, out string, withLayout bool) error {
	base := filepath.Base(path)
	name := strings.TrimSuffix(strings.TrimSuffix(base, filepath.Ext(base)), ".stria")
	proj := project.New(name)
	proj.SetImage(path, source)
	proj.Params = params
	proj.WriteLayout = withLayout
	if out != "" {
		if rel, err := filepath.Rel(filepath.Dir(path), out); err == nil {
			out = rel
		}
		proj.OutputPrefix = out
	}
	return proj.Save(path)
}

// printProgress reports every 100th line on stdout.
func printProgress(ev report.Event) error {
	step, ok := ev.(report.StepEvent)
	if !ok || step.Line == 0 || step.Line%100 != 0 {
		return nil
	}
	if step.Remaining != nil {
		fmt.Printf("Line %d/%d | Score: %.2f | Remaining: %.1f%%\n", step.Line, step.Total, *step.Score, *step.Remaining)
	} else {
		fmt.Printf("Line %d/%d\n", step.Line, step.Total)
	}
	return nil
}
