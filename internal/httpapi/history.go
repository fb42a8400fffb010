package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/lecture-digest/internal/export"
)

func (s *Server) handleListHistory(c *gin.Context) {
	items, err := s.deps.Store.ListHistory(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleGetHistory(c *gin.Context) {
	item, err := s.deps.Store.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteHistory(c *gin.Context) {
	if err := s.deps.Store.DeleteHistory(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearHistory(c *gin.Context) {
	if err := s.deps.Store.ClearHistory(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleExportHistory(c *gin.Context) {
	items, err := s.deps.Store.ListHistory(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	if len(items) == 0 {
		s.fail(c, errEmpty)
		return
	}

	bundle := make([]export.Item, 0, len(items))
	for _, item := range items {
		bundle = append(bundle, export.Item{Name: item.Filename, Summary: item.Summary})
	}
	attachment(c, export.HistoryFilename(time.Now()), markdownType, []byte(export.Bundle(bundle)))
}
