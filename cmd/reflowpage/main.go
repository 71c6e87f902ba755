// reflowpage lays out an XML document in paged mode and writes one PNG
// per page.
package main

import (
	"flag"
	"fmt"
	"os"

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

func main() {
	width := flag.Float64("w", 794, "page width in pixels")
	height := flag.Float64("h", 1123, "page height in pixels")
	margin := flag.Float64("margin", 50, "page margin in pixels")
	header := flag.Float64("header", 0, "running header band height in pixels")
	footer := flag.Float64("footer", 0, "running footer band height in pixels")
	prefix := flag.String("o", "page", "output PNG filename prefix")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: reflowpage [flags] <document.xml>\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	logger, _ := zap.NewProduction()
	defer logger.Sync()
	reports := report.NewChannel(logger)

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading document: %v\n", err)
		os.Exit(1)
	}
	dom, err := xml.Parse(string(src), 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing document: %v\n", err)
		os.Exit(1)
	}

	fonts := text.NewManager(text.DefaultFontConfig(), reports)
	imgs := images.NewCache(reports)
	engine := layout.NewEngine(fonts, imgs, reports)

	pageSize := geom.Size{Width: *width, Height: *height}
	pageMargin := geom.UniformEdges(*margin)

	res, err := engine.Layout(dom, layout.NewCache(), layout.Options{
		Viewport:   pageSize,
		PageSize:   pageSize,
		PageMargin: pageMargin,
		PageHeader: *header,
		PageFooter: *footer,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error laying out document: %v\n", err)
		os.Exit(1)
	}

	list := display.Build(res, display.Options{Images: imgs})
	frag := layout.NewFragmentationContext(pageSize, pageMargin).
		WithHeaderFooter(*header, *footer)
	pages := display.Paginate(list, frag, res.PageCount)

	fmt.Fprintf(os.Stderr, "Rendering %d page(s) at %.0fx%.0f...\n",
		len(pages), *width, *height)

	for i, page := range pages {
		r := render.NewRenderer(int(*width), int(*height), fonts, imgs)
		r.RenderPage(page)
		name := fmt.Sprintf("%s-%03d.png", *prefix, i+1)
		if err := r.SavePNG(name); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", name, err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", name)
	}
}
