package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/dgallion1/docx2md/internal/fixup"
)

// handleFixup runs the Markdown post-pass over the request body. The
// chapter query parameter enables heading renumbering for that chapter.
func (s *Server) handleFixup(w http.ResponseWriter, r *http.Request) {
	chapter := 0
	if v := r.URL.Query().Get("chapter"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "chapter must be a non-negative integer", http.StatusBadRequest)
			return
		}
		chapter = n
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		jsonError(w, "failed to read body: "+err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	writeMarkdown(w, fixup.Transform(string(body), chapter))
}
