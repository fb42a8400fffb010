// Package export renders summaries as Markdown bundles, plain text and Word files.
package export

import (
	"regexp"
	"strings"
)

var (
	reHeaderMark = regexp.MustCompile(`#{1,6}\s`)
	reBold       = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	reItalic     = regexp.MustCompile(`\*([^*\n]+)\*`)
	reCode       = regexp.MustCompile("`([^`]+)`")
	reLink       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHeading    = regexp.MustCompile(`^(#{1,6})\s+(.+)`)
)

// PlainText strips Markdown syntax from md.
func PlainText(md string) string {
	s := reHeaderMark.ReplaceAllString(md, "")
	s = reBold.ReplaceAllString(s, "$1")
	s = reItalic.ReplaceAllString(s, "$1")
	s = reCode.ReplaceAllString(s, "$1")
	s = reLink.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "---", "")
	s = strings.ReplaceAll(s, "* [ ]", "[ ]")
	s = strings.ReplaceAll(s, "* ", "- ")
	return strings.TrimSpace(s)
}

type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockBullet    BlockType = "bullet"
	BlockParagraph BlockType = "paragraph"
)

// Block is one line of a summary reduced to its structure.
type Block struct {
	Type  BlockType
	Level int
	Text  string
}

// Parse splits md into headings, bullets and paragraphs. Blank lines,
// rules and <br> lines are dropped.
func Parse(md string) []Block {
	return parse(md, cleanInline)
}

func parse(md string, clean func(string) string) []Block {
	var blocks []Block
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" || trimmed == "<br>" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			blocks = append(blocks, Block{Type: BlockHeading, Level: len(m[1]), Text: clean(m[2])})
			continue
		}

		if strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "- ") {
			blocks = append(blocks, Block{Type: BlockBullet, Text: clean(trimmed[2:])})
			continue
		}

		blocks = append(blocks, Block{Type: BlockParagraph, Text: clean(trimmed)})
	}
	return blocks
}

func cleanInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
