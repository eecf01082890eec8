package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	fontRegular = "goregular"
	fontBold    = "gobold"

	pageMargin   = 40.0
	bodySize     = 11.0
	blankSpacing = 5.0
	lineFactor   = 1.4
)

var headingSizes = []struct {
	prefix string
	size   float64
}{
	{"### ", 12},
	{"## ", 14},
	{"# ", 16},
}

// RenderPDF writes markdown to w as an A4 PDF. Only headings, blank lines
// and body text are laid out; bold markers are stripped.
func RenderPDF(markdown string, w io.Writer) error {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})

	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return fmt.Errorf("load regular font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return fmt.Errorf("load bold font: %w", err)
	}

	r := &renderer{
		pdf:    pdf,
		width:  gopdf.PageSizeA4.W - 2*pageMargin,
		bottom: gopdf.PageSizeA4.H - pageMargin,
	}
	r.newPage()

	sc := bufio.NewScanner(strings.NewReader(markdown))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if err := r.line(sc.Text()); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	if _, err := pdf.WriteTo(w); err != nil {
		return fmt.Errorf("write PDF: %w", err)
	}
	return nil
}

type renderer struct {
	pdf    *gopdf.GoPdf
	width  float64
	bottom float64
}

func (r *renderer) newPage() {
	r.pdf.AddPage()
	r.pdf.SetXY(pageMargin, pageMargin)
}

func (r *renderer) line(raw string) error {
	text := strings.TrimRight(raw, " \t")
	if strings.TrimSpace(text) == "" {
		r.pdf.SetY(r.pdf.GetY() + blankSpacing)
		return nil
	}

	family, size := fontRegular, bodySize
	for _, h := range headingSizes {
		if strings.HasPrefix(text, h.prefix) {
			family, size = fontBold, h.size
			text = strings.TrimPrefix(text, h.prefix)
			break
		}
	}
	text = strings.ReplaceAll(text, "**", "")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	if err := r.pdf.SetFont(family, "", size); err != nil {
		return fmt.Errorf("set font: %w", err)
	}
	wrapped, err := r.pdf.SplitText(text, r.width)
	if err != nil {
		return fmt.Errorf("wrap line %q: %w", text, err)
	}

	height := size * lineFactor
	for _, l := range wrapped {
		if r.pdf.GetY()+height > r.bottom {
			r.newPage()
		}
		r.pdf.SetX(pageMargin)
		if err := r.pdf.Cell(nil, l); err != nil {
			return fmt.Errorf("write text: %w", err)
		}
		r.pdf.SetY(r.pdf.GetY() + height)
	}
	return nil
}
