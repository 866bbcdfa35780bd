// Command layerpaint paints on a layer stack from a TOML script, or
// flattens a saved document, and writes the result as JSON or PNG.
//
//	layerpaint -script paint.toml -json out.json -png out.png
//	layerpaint -in doc.json -png out.png
package main

import (
	"context"
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/layers"
)

func main() {
	var (
		scriptPath = flag.String("script", "", "TOML painting script")
		inPath     = flag.String("in", "", "JSON document to load instead of a script")
		jsonPath   = flag.String("json", "", "write the layer stack as JSON")
		pngPath    = flag.String("png", "", "write the merged layers as PNG")
		verbose    = flag.Bool("v", false, "log debug output to stderr")
	)
	flag.Parse()

	if *verbose {
		layers.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if (*scriptPath == "") == (*inPath == "") {
		log.Fatal("exactly one of -script and -in is required")
	}

	ctx := context.Background()
	p, err := load(ctx, *scriptPath, *inPath)
	if err != nil {
		log.Fatalf("Failed to load: %v", err)
	}

	if *jsonPath != "" {
		if err := writeJSON(ctx, p, *jsonPath); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Layers saved to %s (%d layers)\n", *jsonPath, p.Layers().Len())
	}
	if *pngPath != "" {
		if err := writePNG(ctx, p, *pngPath); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Image saved to %s (%dx%d)\n", *pngPath, p.Width(), p.Height())
	}
}

func load(ctx context.Context, scriptPath, inPath string) (*layers.Painter, error) {
	if inPath != "" {
		data, err := os.ReadFile(inPath)
		if err != nil {
			return nil, err
		}
		return layers.ParsePainter(ctx, data)
	}
	s, err := readScript(scriptPath)
	if err != nil {
		return nil, err
	}
	return s.run(ctx)
}

func writeJSON(ctx context.Context, p *layers.Painter, path string) error {
	data, err := p.ToJSON(ctx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func writePNG(ctx context.Context, p *layers.Painter, path string) error {
	img, err := p.Layers().Merged(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
