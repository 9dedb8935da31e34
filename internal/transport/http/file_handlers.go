package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pinchat/pinchat-server/internal/files"
)

// FileHandlers serves uploaded file content.
type FileHandlers struct {
	files *files.Store
	log   *zerolog.Logger
}

// NewFileHandlers creates a new file handlers instance.
func NewFileHandlers(fileStore *files.Store, logger *zerolog.Logger) *FileHandlers {
	return &FileHandlers{
		files: fileStore,
		log:   logger,
	}
}

// Download streams a stored upload by its sanitized filename. Names with
// path separators or unknown names yield 404.
// GET /uploads/:filename
func (h *FileHandlers) Download(c *gin.Context) {
	name := c.Param("filename")

	path, err := h.files.Path(name)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "file not found"})
		return
	}

	c.File(path)
}
