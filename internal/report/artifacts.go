package report

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"os"

	"gocv.io/x/gocv"

	pimage "stria/internal/image"
)

// EncodePNG encodes an 8-bit gray image as PNG.
func EncodePNG(g *image.Gray) ([]byte, error) {
	mat := pimage.GrayToMat(g)
	defer mat.Close()
	return encodeMat(mat)
}

// Comparison places the target darkness map and the rendered result side by
// side and encodes them as one PNG.
func Comparison(target, result *image.Gray) ([]byte, error) {
	if target.Bounds().Dy() != result.Bounds().Dy() {
		return nil, fmt.Errorf("comparison needs equal heights, got %d and %d",
			target.Bounds().Dy(), result.Bounds().Dy())
	}

	left := pimage.GrayToMat(target)
	defer left.Close()
	right := pimage.GrayToMat(result)
	defer right.Close()

	combined := gocv.NewMat()
	defer combined.Close()
	gocv.Hconcat(left, right, &combined)

	return encodeMat(combined)
}

func encodeMat(mat gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	out := make([]byte, buf.Len())
	copy(out, buf.GetBytes())
	return out, nil
}

// DataURL wraps PNG bytes in a data: URL suitable for an <img> src.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// WriteSequence writes the plain-text nail listing: a commented header
// followed by one nail index per line.
func WriteSequence(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)
	seq := r.Sequencer.Sequence()

	fmt.Fprintf(bw, "# String Art Sequence\n")
	fmt.Fprintf(bw, "# Nails: %d\n", r.Generator.Params.Nails)
	fmt.Fprintf(bw, "# Lines: %d\n", len(seq)-1)
	fmt.Fprintf(bw, "# Thread Weight: %.3f\n", r.Generator.Weight)
	fmt.Fprintf(bw, "# Min Distance: %d\n\n", r.Generator.Params.MinDistance)
	for _, nail := range seq {
		fmt.Fprintf(bw, "%d\n", nail)
	}
	return bw.Flush()
}

// Files lists the artifact paths written by WriteFiles.
type Files struct {
	Sequence   string
	Preview    string
	Comparison string
	Layout     string
}

// WriteFiles writes the sequence listing, preview and comparison images next
// to prefix. The SVG layout is written only when withLayout is set.
func WriteFiles(prefix string, r *Report, withLayout bool) (Files, error) {
	files := Files{
		Sequence:   prefix + "_sequence.txt",
		Preview:    prefix + "_preview.png",
		Comparison: prefix + "_comparison.png",
	}

	if err := writeFile(files.Sequence, func(w io.Writer) error { return WriteSequence(w, r) }); err != nil {
		return files, err
	}

	result := r.Sequencer.Result().Gray()
	preview, err := EncodePNG(result)
	if err != nil {
		return files, err
	}
	if err := os.WriteFile(files.Preview, preview, 0o644); err != nil {
		return files, fmt.Errorf("failed to write preview: %w", err)
	}

	comparison, err := Comparison(r.Generator.Target.Gray(), result)
	if err != nil {
		return files, err
	}
	if err := os.WriteFile(files.Comparison, comparison, 0o644); err != nil {
		return files, fmt.Errorf("failed to write comparison: %w", err)
	}

	if withLayout {
		files.Layout = prefix + "_layout.svg"
		err := writeFile(files.Layout, func(w io.Writer) error {
			return WriteSVG(w, r.Generator.Target.Size, r.Generator.Nails, r.Sequencer.Sequence(), DefaultSVGStyle())
		})
		if err != nil {
			return files, err
		}
	}
	return files, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
