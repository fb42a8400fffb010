package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/lecture-digest/internal/export"
)

const (
	markdownType = "text/markdown; charset=utf-8"
	textType     = "text/plain; charset=utf-8"
	docxType     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	pdfType      = "application/pdf"
)

type exportRequest struct {
	Markdown string `json:"markdown"`
	Filename string `json:"filename"`
}

// handleExport converts a summary to md, txt, docx or pdf for download.
func (s *Server) handleExport(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Markdown) == "" {
		s.fail(c, badRequest("markdown is required"))
		return
	}
	name := req.Filename
	if name == "" {
		name = "summary"
	}

	switch c.Param("format") {
	case "md":
		attachment(c, name+".md", markdownType, []byte(req.Markdown))
	case "txt":
		attachment(c, name+".txt", textType, []byte(export.PlainText(req.Markdown)))
	case "docx":
		data, err := export.Docx(name, req.Markdown)
		if err != nil {
			s.fail(c, err)
			return
		}
		attachment(c, name+".docx", docxType, data)
	case "pdf":
		data, err := export.Pdf(name, req.Markdown)
		if err != nil {
			s.fail(c, err)
			return
		}
		attachment(c, name+".pdf", pdfType, data)
	default:
		s.fail(c, badRequest("unsupported export format: "+c.Param("format")))
	}
}
