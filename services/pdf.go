package services

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// ─── Markdown-ish line model ────────────────────────────────────────────────

type blockKind int

const (
	blockSpace blockKind = iota
	blockHeading
	blockSubheading
	blockBody
)

// span is a run of body text sharing one font style.
type span struct {
	Text   string
	Bold   bool
	Italic bool
}

type block struct {
	Kind  blockKind
	Text  string // headings only
	Spans []span // body only
}

var boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)

// parseBlocks splits combined plan text into renderable blocks, one per line.
func parseBlocks(text string) []block {
	lines := strings.Split(text, "\n")
	blocks := make([]block, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			blocks = append(blocks, block{Kind: blockSpace})
			continue
		}
		if kind, heading, ok := headingLine(line); ok {
			blocks = append(blocks, block{Kind: kind, Text: heading})
			continue
		}
		if rest, ok := strings.CutPrefix(line, "- "); ok {
			line = "• " + rest
		} else if rest, ok := strings.CutPrefix(line, "• "); ok {
			line = "• " + rest
		}
		blocks = append(blocks, block{Kind: blockBody, Spans: parseInline(line)})
	}
	return blocks
}

// headingLine recognises "# ", "## " and "### ". One and two markers render
// the same way.
func headingLine(line string) (blockKind, string, bool) {
	n := 0
	for n < len(line) && line[n] == '#' {
		n++
	}
	if n < 1 || n > 3 || n >= len(line) || line[n] != ' ' {
		return 0, "", false
	}
	kind := blockHeading
	if n == 3 {
		kind = blockSubheading
	}
	return kind, strings.TrimSpace(line[n+1:]), true
}

type cell struct {
	r      rune
	bold   bool
	italic bool
	tag    bool // stands in for a removed ** pair, never a star itself
	drop   bool // italic delimiter, still a star for neighbour checks
}

// parseInline applies **bold** and then *italic*. An italic delimiter is a
// lone asterisk: neither neighbour may be an asterisk, so leftover double
// asterisks are never consumed.
func parseInline(line string) []span {
	var cells []cell
	appendText := func(s string, bold bool) {
		for _, r := range s {
			cells = append(cells, cell{r: r, bold: bold})
		}
	}

	last := 0
	for _, m := range boldRe.FindAllStringSubmatchIndex(line, -1) {
		appendText(line[last:m[0]], false)
		cells = append(cells, cell{tag: true})
		appendText(line[m[2]:m[3]], true)
		cells = append(cells, cell{tag: true})
		last = m[1]
	}
	appendText(line[last:], false)

	isStar := func(i int) bool {
		return i >= 0 && i < len(cells) && !cells[i].tag && cells[i].r == '*'
	}
	lone := func(i int) bool {
		return isStar(i) && !isStar(i-1) && !isStar(i+1)
	}

	for i := 0; i < len(cells); i++ {
		if !lone(i) {
			continue
		}
		for j := i + 2; j < len(cells); j++ {
			if !lone(j) {
				continue
			}
			cells[i].drop, cells[j].drop = true, true
			for k := i + 1; k < j; k++ {
				cells[k].italic = true
			}
			i = j
			break
		}
	}

	var spans []span
	var b strings.Builder
	cur := span{}
	flush := func() {
		if b.Len() > 0 {
			cur.Text = b.String()
			spans = append(spans, cur)
			b.Reset()
		}
	}
	for _, c := range cells {
		if c.tag || c.drop {
			continue
		}
		if c.bold != cur.Bold || c.italic != cur.Italic {
			flush()
			cur = span{Bold: c.bold, Italic: c.italic}
		}
		b.WriteRune(c.r)
	}
	flush()
	return spans
}

// ─── PDF ────────────────────────────────────────────────────────────────────

const (
	mmPerPt     = 25.4 / 72
	pageMargin  = 25.4       // 1 inch
	titleSpacer = 0.2 * 25.4 // extra gap under the title
)

type textStyle struct {
	size        float64
	r, g, b     int
	spaceBefore float64 // pt
	spaceAfter  float64 // pt
	leading     float64 // pt
}

var (
	titleStyle      = textStyle{size: 18, r: 0x1a, g: 0x1a, b: 0x1a, spaceAfter: 20, leading: 22}
	headingStyle    = textStyle{size: 14, r: 0x2c, g: 0x3e, b: 0x50, spaceBefore: 12, spaceAfter: 12, leading: 18}
	subheadingStyle = textStyle{size: 12, r: 0x34, g: 0x49, b: 0x5e, spaceBefore: 10, spaceAfter: 10, leading: 15}
	bodyStyle       = textStyle{size: 10, r: 0x33, g: 0x33, b: 0x33, spaceAfter: 8, leading: 14}
)

// RenderPlanPDF lays out combined plan text on US Letter pages with 1-inch
// margins and returns the document bytes.
func RenderPlanPDF(text, title string) ([]byte, error) {
	if title == "" {
		title = "Trip Plan"
	}

	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title, true)
	pdf.SetCreator("TripCrew", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin / 2)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	writeTitle(pdf, tr, title)

	for _, b := range parseBlocks(text) {
		switch b.Kind {
		case blockSpace:
			pdf.Ln(2.54) // 0.1 inch
		case blockHeading:
			writeHeading(pdf, tr, headingStyle, b.Text)
		case blockSubheading:
			writeHeading(pdf, tr, subheadingStyle, b.Text)
		case blockBody:
			lineHt := bodyStyle.leading * mmPerPt
			pdf.SetTextColor(bodyStyle.r, bodyStyle.g, bodyStyle.b)
			for _, s := range b.Spans {
				pdf.SetFont("Helvetica", fontStyle(s), bodyStyle.size)
				pdf.Write(lineHt, tr(s.Text))
			}
			pdf.Ln(lineHt)
			pdf.Ln(bodyStyle.spaceAfter * mmPerPt)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeading(pdf *gofpdf.Fpdf, tr func(string) string, s textStyle, text string) {
	pdf.Ln(s.spaceBefore * mmPerPt)
	pdf.SetFont("Helvetica", "B", s.size)
	pdf.SetTextColor(s.r, s.g, s.b)
	pdf.MultiCell(0, s.leading*mmPerPt, tr(text), "", "L", false)
	pdf.Ln(s.spaceAfter * mmPerPt)
}

func writeTitle(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	writeHeading(pdf, tr, titleStyle, title)
	pdf.Ln(titleSpacer)
}

func fontStyle(s span) string {
	style := ""
	if s.Bold {
		style += "B"
	}
	if s.Italic {
		style += "I"
	}
	return style
}
