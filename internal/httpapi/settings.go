package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nguyentantai21042004/lecture-digest/internal/store"
)

type settingsResponse struct {
	CustomPrompt     string `json:"customPrompt"`
	DebugMode        bool   `json:"debugMode"`
	GeminiAPIKey     string `json:"geminiApiKey"`
	WhisperAPIKey    string `json:"whisperApiKey"`
	HasGeminiAPIKey  bool   `json:"hasGeminiApiKey"`
	HasWhisperAPIKey bool   `json:"hasWhisperApiKey"`
}

func newSettingsResponse(st store.Settings) settingsResponse {
	return settingsResponse{
		CustomPrompt:     st.CustomPrompt,
		DebugMode:        st.DebugMode,
		GeminiAPIKey:     maskKey(st.GeminiAPIKey),
		WhisperAPIKey:    maskKey(st.WhisperAPIKey),
		HasGeminiAPIKey:  st.GeminiAPIKey != "",
		HasWhisperAPIKey: st.WhisperAPIKey != "",
	}
}

// maskKey keeps the first and last four characters of long keys.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

func (s *Server) handleGetSettings(c *gin.Context) {
	st, err := s.deps.Store.Settings(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newSettingsResponse(st))
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var u store.SettingsUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		s.fail(c, badRequest("invalid JSON body"))
		return
	}

	st, err := s.deps.Store.UpdateSettings(c.Request.Context(), u)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info(c.Request.Context(), "Settings updated")
	c.JSON(http.StatusOK, newSettingsResponse(st))
}

func (s *Server) handleResetPrompt(c *gin.Context) {
	prompt, err := s.deps.Store.ResetPrompt(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}
