package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName  = "Times New Roman"
	fontSize  = 11
	fontColor = "000000"
)

var reBoldSpan = regexp.MustCompile(`\*\*(.+?)\*\*`)

// Docx renders md as a Word document and returns the file bytes.
func Docx(title, md string) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}

	if title != "" {
		addStyledRun(doc.AddParagraph(""), title, true, headingSize(1))
	}

	for _, b := range parseRich(md) {
		p := doc.AddParagraph("")
		switch b.Type {
		case BlockHeading:
			addStyledRun(p, b.Text, true, headingSize(b.Level))
		case BlockBullet:
			addRichText(p, "• "+b.Text)
		default:
			addRichText(p, b.Text)
		}
	}

	dir, err := os.MkdirTemp("", "digest-docx-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "summary.docx")
	if err := doc.SaveTo(path); err != nil {
		return nil, fmt.Errorf("save docx: %w", err)
	}
	return os.ReadFile(path)
}

// parseRich keeps **bold** markers so runs can be styled.
func parseRich(md string) []Block {
	return parse(md, func(s string) string {
		return strings.ReplaceAll(s, "`", "")
	})
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 18
	case 2:
		return 14
	case 3:
		return 12
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanInline(text)).Font(fontName).Size(size).Color(fontColor)
	if bold {
		run.Bold(true)
	}
}

// addRichText writes text as runs, bolding **spans**.
func addRichText(p *docx.Paragraph, text string) {
	parts := reBoldSpan.Split(text, -1)
	matches := reBoldSpan.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanInline(part)).Font(fontName).Size(fontSize).Color(fontColor)
		}
		if i < len(matches) {
			p.AddText(cleanInline(matches[i][1])).Font(fontName).Size(fontSize).Color(fontColor).Bold(true)
		}
	}
}
