// Package letterhead renders letterhead-template PDFs: a static base page
// (an imported PDF or a background image) with text fields overlaid at fixed
// coordinates. Body text that would run into the footer is dropped; there is
// no pagination.
package letterhead

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"
)

// Page geometry in millimetres (A4 portrait).
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	MarginLeft   = 20.0
	MarginRight  = 20.0
	HeaderTop    = 18.0
	BodyTop      = 88.0
	FooterTop    = 267.0
	LineHeight   = 6.0
	BodyFontSize = 11.0
)

// BodyWidth is the usable width of a body line.
const BodyWidth = PageWidth - MarginLeft - MarginRight

var ErrEmptyContent = errors.New("letterhead has no content")

// Content is the text overlaid on the base page.
type Content struct {
	Name         string   `json:"name"`
	Designation  string   `json:"designation"`
	Registration string   `json:"registration"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Email        string   `json:"email"`
	Date         string   `json:"date"`
	Reference    string   `json:"reference"`
	Subject      string   `json:"subject"`
	Body         []string `json:"body"`
}

func (c Content) empty() bool {
	return c.Name == "" && c.Subject == "" && len(c.Body) == 0
}

// Line is one body line placed on the page.
type Line struct {
	Text string
	Y    float64
}

// Layout places body paragraphs line by line from BodyTop. split wraps one
// paragraph into lines that fit BodyWidth. Lines whose baseline would pass
// FooterTop are dropped and counted.
func Layout(paragraphs []string, split func(string) []string) (placed []Line, dropped int) {
	y := BodyTop
	for i, p := range paragraphs {
		lines := []string{""}
		if strings.TrimSpace(p) != "" {
			lines = split(p)
		}
		for _, l := range lines {
			if y+LineHeight > FooterTop {
				dropped++
				continue
			}
			placed = append(placed, Line{Text: l, Y: y})
			y += LineHeight
		}
		if i < len(paragraphs)-1 && y+LineHeight/2 <= FooterTop {
			y += LineHeight / 2
		}
	}
	return placed, dropped
}

// Background is an optional image drawn full-page instead of the base PDF.
type Background struct {
	Data []byte
	// Type is the gofpdf image type: "PNG", "JPG" or "GIF".
	Type string
}

// Renderer draws letterheads over a base PDF page. A zero BasePDF renders
// onto a blank page.
type Renderer struct {
	BasePDF []byte
}

// NewRenderer loads the base PDF at path. A missing file yields a renderer
// over a blank page.
func NewRenderer(path string) (*Renderer, error) {
	if path == "" {
		return &Renderer{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Renderer{}, nil
		}
		return nil, fmt.Errorf("read base pdf: %w", err)
	}
	return &Renderer{BasePDF: b}, nil
}

// Result is a rendered document.
type Result struct {
	PDF     []byte
	Dropped int
}

// Render produces the PDF. bg, when non-nil, replaces the base PDF.
func (r *Renderer) Render(c Content, bg *Background) (*Result, error) {
	if c.empty() {
		return nil, ErrEmptyContent
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(MarginLeft, HeaderTop, MarginRight)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	switch {
	case bg != nil && len(bg.Data) > 0:
		opts := gofpdf.ImageOptions{ImageType: strings.ToUpper(bg.Type), ReadDpi: true}
		pdf.RegisterImageOptionsReader("background", opts, bytes.NewReader(bg.Data))
		pdf.ImageOptions("background", 0, 0, PageWidth, PageHeight, false, opts, 0, "")
	case len(r.BasePDF) > 0:
		var rs io.ReadSeeker = bytes.NewReader(r.BasePDF)
		tpl := gofpdi.ImportPageFromStream(pdf, &rs, 1, "/MediaBox")
		gofpdi.UseImportedTemplate(pdf, tpl, 0, 0, PageWidth, PageHeight)
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load base page: %w", err)
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	header(pdf, tr, c)

	pdf.SetFont("Helvetica", "", BodyFontSize)
	y := BodyTop - 2*LineHeight
	if c.Subject != "" {
		pdf.SetFont("Helvetica", "B", BodyFontSize)
		pdf.Text(MarginLeft, y, tr("Subject: "+c.Subject))
		pdf.SetFont("Helvetica", "", BodyFontSize)
	}

	placed, dropped := Layout(c.Body, func(p string) []string {
		var out []string
		for _, b := range pdf.SplitLines([]byte(tr(p)), BodyWidth) {
			out = append(out, string(b))
		}
		return out
	})
	for _, l := range placed {
		pdf.Text(MarginLeft, l.Y, l.Text)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return &Result{PDF: buf.Bytes(), Dropped: dropped}, nil
}

func header(pdf *gofpdf.Fpdf, tr func(string) string, c Content) {
	y := HeaderTop + 6
	if c.Name != "" {
		pdf.SetFont("Helvetica", "B", 16)
		pdf.Text(MarginLeft, y, tr(c.Name))
		y += 6
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range []string{c.Designation, c.Registration, c.Address} {
		if s != "" {
			pdf.Text(MarginLeft, y, tr(s))
			y += 5
		}
	}

	contact := joinNonEmpty("  |  ", c.Phone, c.Email)
	if contact != "" {
		pdf.Text(MarginLeft, y, tr(contact))
		y += 5
	}
	pdf.SetDrawColor(90, 90, 90)
	pdf.Line(MarginLeft, y, PageWidth-MarginRight, y)

	right := PageWidth - MarginRight
	y += 8
	if c.Reference != "" {
		pdf.Text(MarginLeft, y, tr("Ref: "+c.Reference))
	}
	if c.Date != "" {
		label := tr("Date: " + c.Date)
		pdf.Text(right-pdf.GetStringWidth(label), y, label)
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
