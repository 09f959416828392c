// Command stringartview plays a string-art run live: nails appear first and
// threads are drawn as the sequencer picks them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"stria/internal/generator"
	pimage "stria/internal/image"
	"stria/internal/project"
	"stria/internal/version"
	"stria/ui/canvas"
)

const appTitle = "stria viewer"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	defaults := generator.DefaultParams()
	projectPath := flag.String("project", "", "Path to a project file (.stria.json)")
	imagePath := flag.String("image", "", "Path to source image")
	nailCount := flag.Int("nails", defaults.Nails, "Number of nails around the circle")
	maxLines := flag.Int("lines", defaults.MaxLines, "Maximum number of lines")
	minDistance := flag.Int("min-distance", defaults.MinDistance, "Minimum nail distance")
	light := flag.Bool("light", false, "Start with the light theme")
	flag.Parse()

	params := defaults
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
	}
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
		fmt.Println("Usage: stringartview -image <path> [-nails 200] [-lines 4000] [-min-distance 20] [-light]")
		fmt.Println("       stringartview -project <file.stria.json>")
		os.Exit(1)
	}

	src, err := pimage.Load(source)
	if err != nil {
		log.Fatalf("%v", err)
	}
	gen, err := generator.New(src, params)
	src.Close()
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Starting %s %s: %s, %s", appTitle, version.String(), source, params)

	v := newViewer(app.New(), gen, *light)
	v.player.Restart()
	v.ShowAndRun()
}

// viewer is the live playback window.
type viewer struct {
	fyne.Window
	canvas    *canvas.ThreadCanvas
	player    *player
	statusBar *widget.Label
	zoomLabel *widget.Label
	playBtn   *widget.Button
}

func newViewer(fyneApp fyne.App, gen *generator.Generator, light bool) *viewer {
	v := &viewer{Window: fyneApp.NewWindow(appTitle)}

	v.canvas = canvas.NewThreadCanvas()
	if light {
		v.canvas.SetTheme(canvas.LightTheme())
	}
	v.canvas.SetFrame(gen.Target.Size, gen.Nails)

	v.statusBar = widget.NewLabel(fmt.Sprintf("0 / %d steps", gen.Params.MaxLines))
	v.player = newPlayer(gen, v.canvas, v.statusBar.SetText)

	content := container.NewBorder(
		v.createToolbar(light),            // top
		container.NewPadded(v.statusBar), // bottom
		nil,                              // left
		nil,                              // right
		v.canvas.Container(),             // center
	)
	v.SetContent(content)
	v.Resize(fyne.NewSize(900, 900))
	v.canvas.SetFitToWindow(true)
	v.SetOnClosed(v.player.Stop)
	return v
}

// createToolbar creates the playback, display and zoom controls.
func (v *viewer) createToolbar(light bool) fyne.CanvasObject {
	v.playBtn = widget.NewButton("Pause", func() {
		if v.player.TogglePause() {
			v.playBtn.SetText("Play")
		} else {
			v.playBtn.SetText("Pause")
		}
	})
	restartBtn := widget.NewButton("Restart", func() {
		v.player.Restart()
		v.playBtn.SetText("Pause")
	})

	speedLabel := widget.NewLabel(fmt.Sprintf("Speed: %d", defaultSpeed))
	speed := widget.NewSlider(minSpeed, maxSpeed)
	speed.Step = 1
	speed.SetValue(defaultSpeed)
	speed.OnChanged = func(value float64) {
		v.player.SetSpeed(int(value))
		speedLabel.SetText(fmt.Sprintf("Speed: %d", int(value)))
	}

	numbers := widget.NewCheck("Show numbers", v.canvas.SetShowNumbers)
	lightCheck := widget.NewCheck("Light", func(on bool) {
		if on {
			v.canvas.SetTheme(canvas.LightTheme())
		} else {
			v.canvas.SetTheme(canvas.DarkTheme())
		}
	})
	lightCheck.SetChecked(light)

	v.zoomLabel = widget.NewLabel("100%")
	v.canvas.OnZoomChange(func(zoom float64) {
		v.zoomLabel.SetText(fmt.Sprintf("%.0f%%", zoom*100))
	})
	zoomOutBtn := widget.NewButton("-", func() {
		v.canvas.SetFitToWindow(false)
		v.canvas.ZoomOut()
	})
	zoomInBtn := widget.NewButton("+", func() {
		v.canvas.SetFitToWindow(false)
		v.canvas.ZoomIn()
	})
	fitBtn := widget.NewButton("Fit", func() {
		v.canvas.SetFitToWindow(true)
	})

	return container.NewHBox(
		v.playBtn,
		restartBtn,
		speedLabel,
		container.NewGridWrap(fyne.NewSize(160, speed.MinSize().Height), speed),
		numbers,
		lightCheck,
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		v.zoomLabel,
	)
}
