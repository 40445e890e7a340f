package serve

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dtnitsch/llm-chat-extractor/pkg/extractor"
	"github.com/dtnitsch/llm-chat-extractor/pkg/metrics"
)

// MessageRequest is the body of the extract and classify endpoints.
type MessageRequest struct {
	Message *string `json:"message"`
}

const errBadRequest = "request body must be JSON with a \"message\" string"

// bind decodes the request body. An empty message is valid; a missing one is not.
func bind(c *gin.Context) (string, bool) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBadRequest})
		return "", false
	}
	return *req.Message, true
}

type Handler struct {
	extractor *extractor.Extractor
	metrics   *metrics.Registry
}

func NewHandler(x *extractor.Extractor, m *metrics.Registry) *Handler {
	return &Handler{extractor: x, metrics: m}
}

// Extract handles POST /v1/extract.
func (h *Handler) Extract(c *gin.Context) {
	message, ok := bind(c)
	if !ok {
		return
	}

	start := time.Now()
	content := h.extractor.Extract(message)
	if h.metrics != nil {
		h.metrics.ObserveSince(start)
	}
	c.JSON(http.StatusOK, content)
}

// Classify handles POST /v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	message, ok := bind(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.extractor.Classify(message))
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
