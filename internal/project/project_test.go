package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"stria/internal/generator"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portrait.stria.json")

	p := New("portrait")
	p.SetImage(path, filepath.Join(dir, "images", "face.jpg"))
	p.Params = p.Params.WithNails(240).WithMaxLines(3500)
	p.WriteLayout = true
	if err := p.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(p, got, cmpopts.EquateApproxTime(0)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.ImagePath != filepath.Join("images", "face.jpg") {
		t.Fatalf("image path stored as %q, want relative", got.ImagePath)
	}
	if want := filepath.Join(dir, "images", "face.jpg"); got.GetImagePath(path) != want {
		t.Fatalf("GetImagePath = %q, want %q", got.GetImagePath(path), want)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`{"version":1,"name":"x","params":{"nails":300}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := generator.DefaultParams().WithNails(300)
	if p.Params != want {
		t.Fatalf("params = %+v, want %+v", p.Params, want)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`{`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted malformed JSON")
	}
}

func TestGetOutputPrefix(t *testing.T) {
	projectPath := filepath.Join("/work", "cat.stria.json")

	tests := []struct {
		name string
		file File
		want string
	}{
		{name: "explicit", file: File{OutputPrefix: "out/cat"}, want: filepath.Join("/work", "out", "cat")},
		{name: "absolute", file: File{OutputPrefix: "/tmp/cat"}, want: "/tmp/cat"},
		{name: "from name", file: File{Name: "kitty"}, want: filepath.Join("/work", "kitty_stringart")},
		{name: "from file name", file: File{}, want: filepath.Join("/work", "cat_stringart")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.file.GetOutputPrefix(projectPath); got != tc.want {
				t.Fatalf("GetOutputPrefix = %q, want %q", got, tc.want)
			}
		})
	}
}
