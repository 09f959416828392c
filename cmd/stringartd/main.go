// Command stringartd serves string-art generation over HTTP.
//
// POST /api/generate with a multipart "image" file and optional n_nails,
// max_lines and min_distance fields; the response is an NDJSON stream of
// step events followed by a result or error event.
package main

import (
	"flag"
	"log"
	"strings"

	"stria/internal/generator"
	"stria/internal/server"
	"stria/internal/version"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	opts := server.DefaultOptions()
	addr := flag.String("addr", opts.Addr, "Listen address")
	origins := flag.String("origins", strings.Join(opts.AllowedOrigins, ","), "Comma-separated allowed CORS origins")
	nails := flag.Int("nails", opts.Defaults.Nails, "Default nail count when a request omits n_nails")
	lines := flag.Int("lines", opts.Defaults.MaxLines, "Default line budget when a request omits max_lines")
	minDistance := flag.Int("min-distance", opts.Defaults.MinDistance, "Default minimum nail distance when a request omits min_distance")
	maxNails := flag.Int("max-nails", opts.Limits.MaxNails, "Largest n_nails a request may ask for (0 = unbounded)")
	maxLines := flag.Int("max-lines", opts.Limits.MaxLines, "Largest max_lines a request may ask for (0 = unbounded)")
	flag.Parse()

	opts.Addr = *addr
	opts.AllowedOrigins = strings.Split(*origins, ",")
	opts.Defaults = opts.Defaults.WithNails(*nails).WithMaxLines(*lines).WithMinDistance(*minDistance)
	opts.Limits = generator.Limits{MaxNails: *maxNails, MaxLines: *maxLines}
	if err := opts.Defaults.ValidateWithin(opts.Limits); err != nil {
		log.Fatalf("Invalid defaults: %v", err)
	}

	srv := server.New(opts)
	log.Printf("stringartd %s on %s (defaults %s, limits %d nails / %d lines)",
		version.String(), srv.Addr, opts.Defaults, opts.Limits.MaxNails, opts.Limits.MaxLines)
	log.Fatal(srv.ListenAndServe())
}
