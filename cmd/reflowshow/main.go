// reflowshow is a desktop viewer: it lays out an XML document with
// inline styles and shows the software-rendered result.
package main

import (
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"reflow/pkg/display"
	"reflow/pkg/geom"
	"reflow/pkg/images"
	"reflow/pkg/layout"
	"reflow/pkg/render"
	"reflow/pkg/report"
	"reflow/pkg/text"
	"reflow/pkg/xml"
)

const (
	viewWidth  = 1024
	viewHeight = 700
)

func main() {
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	reports := report.NewChannel(logger)

	fonts := text.NewManager(text.DefaultFontConfig(), reports)
	imgs := images.NewCache(reports)
	engine := layout.NewEngine(fonts, imgs, reports)

	a := app.New()
	w := a.NewWindow("reflow viewer")
	w.Resize(fyne.NewSize(viewWidth, viewHeight+68))

	target := image.NewRGBA(image.Rect(0, 0, viewWidth, viewHeight))
	canvasImg := canvas.NewImageFromImage(target)
	canvasImg.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Enter a document path and press Enter")

	pathEntry := widget.NewEntry()
	pathEntry.SetPlaceHolder("doc.xml")
	pathEntry.OnSubmitted = func(path string) {
		status.SetText("Rendering " + path + "...")
		go func() {
			img, err := renderFile(engine, fonts, imgs, path)
			if err != nil {
				status.SetText("Error: " + err.Error())
				return
			}
			canvasImg.Image = img
			canvasImg.Refresh()
			status.SetText(path)
			w.SetTitle(fmt.Sprintf("reflow: %s", path))
		}()
	}

	topBar := container.NewBorder(nil, nil, nil, nil, pathEntry)
	content := container.NewBorder(topBar, status, nil, nil, canvasImg)
	w.SetContent(content)

	// Keep focus on the entry so key input always lands somewhere.
	w.Canvas().Focus(pathEntry)

	if len(os.Args) > 1 {
		pathEntry.SetText(os.Args[1])
		pathEntry.OnSubmitted(os.Args[1])
	}

	w.ShowAndRun()
}

func renderFile(engine *layout.Engine, fonts *text.Manager, imgs *images.Cache, path string) (image.Image, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dom, err := xml.Parse(string(src), 1)
	if err != nil {
		return nil, err
	}
	res, err := engine.Layout(dom, layout.NewCache(), layout.Options{
		Viewport: geom.Size{Width: viewWidth, Height: viewHeight},
	})
	if err != nil {
		return nil, err
	}
	list := display.Build(res, display.Options{Images: imgs})

	r := render.NewRenderer(viewWidth, viewHeight, fonts, imgs)
	r.Render(list)
	return r.Image(), nil
}
