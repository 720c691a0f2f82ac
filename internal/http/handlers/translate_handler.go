// Translation HTTP handler: a pure pass-through to the external service.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TranslateRequest is the JSON payload for POST /translate.
type TranslateRequest struct {
	Text       string `json:"text" binding:"required"`
	SourceLang string `json:"source_language" binding:"required"`
	DestLang   string `json:"dest_language" binding:"required"`
}

// Translate handles POST /translate. The backend adds nothing to the
// collaborator's answer; failures surface as 502 since the dependency is
// external.
func (h *Handlers) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	text, err := h.translator.Translate(c.Request.Context(), req.Text, req.SourceLang, req.DestLang)
	if err != nil {
		Fail(c, http.StatusBadGateway, ErrCodeInternal, "translation service unavailable")
		return
	}
	ok(c, gin.H{"text": text})
}
