package transcriber

import (
	"fmt"
	"strings"
)

// FormatTimestamp renders seconds as MM:SS, or H:MM:SS past one hour.
func FormatTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	total := int(sec)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Markdown renders the transcript as one timestamped line per segment.
func (tr Transcript) Markdown() string {
	if len(tr.Segments) == 0 {
		return tr.Text
	}

	var b strings.Builder
	for _, seg := range tr.Segments {
		fmt.Fprintf(&b, "- **[%s]** %s\n", FormatTimestamp(seg.Start), seg.Text)
	}
	return b.String()
}
