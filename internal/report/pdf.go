package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/cheeseechops/CamdramAPI/internal/fileutil"
)

// Page geometry in points on landscape US Letter.
const (
	marginX        = 40.0
	marginTop      = 40.0
	lineHeight     = 12.0
	columns        = 3
	gutter         = 20.0
	titleClearance = 3
	plainMaxChars  = 110
	gridCols       = 3
	gridRows       = 2
)

// FileName is the download name of the summary.
const FileName = "camdram_plaintext_summary.pdf"

type renderer struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	w, h float64
}

func newRenderer() *renderer {
	pdf := fpdf.New("L", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Camdram summary", true)
	w, h := pdf.GetPageSize()
	return &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), w: w, h: h}
}

// capacity is how many body lines fit under a page title.
func (r *renderer) capacity() int {
	return int((r.h-2*marginTop)/lineHeight) - 2
}

func (r *renderer) title(title string, page int) {
	if page > 1 {
		title = fmt.Sprintf("%s (cont. %d)", title, page)
	}
	r.pdf.AddPage()
	r.pdf.SetFont("Courier", "B", 12)
	r.pdf.Text(marginX, marginTop, r.tr(title))
	r.pdf.SetFont("Courier", "", 10)
}

func (r *renderer) lines(x, top float64, lines []string) {
	for i, line := range lines {
		r.pdf.Text(x, top+float64(i)*lineHeight, r.tr(line))
	}
}

// plainPage draws one page of lines, dropping whatever does not fit.
func (r *renderer) plainPage(title string, lines []string) {
	if len(lines) > r.capacity() {
		lines = lines[:r.capacity()]
	}
	r.title(title, 1)
	r.lines(marginX, marginTop+2*lineHeight, lines)
}

// columnPages lays sections out in three columns, never splitting a section.
func (r *renderer) columnPages(title string, sections []Section) {
	colWidth := (r.w - 2*marginX - (columns-1)*gutter) / columns
	top := marginTop + titleClearance*lineHeight
	for i, page := range packColumns(sections, r.capacity(), columns) {
		r.title(title, i+1)
		for c, lines := range page {
			r.lines(marginX+float64(c)*(colWidth+gutter), top, lines)
		}
	}
}

// gridPages places up to six sections per page in a 3x2 grid, clipping each
// to its cell.
func (r *renderer) gridPages(title string, sections []Section) {
	const rowGap = lineHeight
	top := marginTop + titleClearance*lineHeight
	bodyHeight := max(lineHeight*gridRows, r.h-marginTop-top)
	cellWidth := (r.w - 2*marginX - (gridCols-1)*gutter) / gridCols
	cellHeight := (bodyHeight - rowGap) / gridRows
	maxLines := max(3, int(cellHeight/lineHeight)-1)
	maxChars := max(24, int(cellWidth/6)-2)

	perPage := gridCols * gridRows
	if len(sections) == 0 {
		r.title(title, 1)
		return
	}
	for start, page := 0, 1; start < len(sections); start, page = start+perPage, page+1 {
		r.title(title, page)
		for i, sec := range sections[start:min(start+perPage, len(sections))] {
			row, col := i/gridCols, i%gridCols
			x := marginX + float64(col)*(cellWidth+gutter)
			y := top + float64(row)*(cellHeight+rowGap)
			r.lines(x, y, clipCell(sec, maxLines, maxChars))
		}
	}
}

func clipCell(sec Section, maxLines, maxChars int) []string {
	lines := append([]string{sec.Title + ":"}, sec.Lines...)
	for i := range lines {
		lines[i] = clip(lines[i], maxChars)
	}
	if len(lines) > maxLines {
		lines = append(lines[:maxLines-1], "...")
	}
	return lines
}

// packColumns fills columns top to bottom, moving a section that does not fit
// to the next column or page whole. A section taller than a column is cut.
// The result is pages of columns of lines; there is always at least one page.
func packColumns(sections []Section, capacity, ncols int) [][][]string {
	var pages [][][]string
	page := make([][]string, ncols)
	col := 0
	for _, sec := range sections {
		block := make([]string, 0, len(sec.Lines)+2)
		block = append(block, sec.Title+":")
		block = append(block, sec.Lines...)
		block = append(block, "")
		if len(block) > capacity {
			block = block[:capacity]
		}
		for len(page[col])+len(block) > capacity {
			col++
			if col == ncols {
				pages = append(pages, page)
				page = make([][]string, ncols)
				col = 0
			}
		}
		page[col] = append(page[col], block...)
	}
	if len(pages) == 0 || len(page[0]) > 0 {
		pages = append(pages, page)
	}
	return pages
}

// Render writes the summary as a PDF: the person overview, role groups,
// society boards, venue boards and shared-role pairs.
func Render(w io.Writer, s Summary) error {
	r := render(s)
	if err := r.pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return r.pdf.Output(w)
}

func render(s Summary) *renderer {
	r := newRenderer()
	people := make([]string, len(s.People))
	for i, line := range s.People {
		people[i] = clip(line, plainMaxChars)
	}
	r.plainPage("By Person Summary", people)
	r.columnPages("Role-Focused Summary", s.Roles)
	r.columnPages("Society Top 15 (by show count)", s.Societies)
	r.gridPages("Venue Top 15 (by show count)", s.Venues)
	r.plainPage("Shared Role Pairs", s.Pairs)
	return r
}

// WriteFile renders the summary and atomically replaces path.
func WriteFile(path string, s Summary) error {
	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
