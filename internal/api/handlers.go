package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dochub/dochub/internal/engine"
	"github.com/dochub/dochub/internal/ingest"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	letterTypeID := r.PathValue("id")

	var req engine.UploadRequest
	req.LetterTypeID = letterTypeID

	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		up, err := ingest.ParseCSV(file)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		req.DisplayName = r.FormValue("display_name")
		req.SourceUploadID = r.FormValue("source_upload_id")
		req.Header = up.Header
		req.Rows = up.Rows

	default:
		var body UploadRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.DisplayName = body.DisplayName
		req.SourceUploadID = body.SourceUploadID
		req.Header = body.Columns
		req.Rows = body.Rows
	}

	rec, err := s.engine.ProcessUpload(r.Context(), req)
	if err != nil {
		errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	jsonResponse(w, http.StatusCreated, UploadResponse{
		TableName: rec.TableName,
		Columns:   len(rec.Columns),
		TotalRows: rec.TotalRows,
	})
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	letterTypeID := r.PathValue("id")
	skip := queryInt(r, "skip", 0)
	take := queryInt(r, "take", 50)

	res, err := s.engine.Page(r.Context(), letterTypeID, skip, take)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleTableRows(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("name")
	skip := queryInt(r, "skip", 0)
	take := queryInt(r, "take", 50)

	jsonResponse(w, http.StatusOK, s.engine.PageTable(r.Context(), table, skip, take))
}

func (s *Server) handleRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := s.engine.Recipients(r.Context(), r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recipients == nil {
		recipients = []engine.Recipient{}
	}
	jsonResponse(w, http.StatusOK, recipients)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	rec, err := s.engine.Schema(r.Context(), r.PathValue("id"))
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		errorResponse(w, http.StatusNotFound, "no active table for letter type")
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DropTable(r.Context(), r.PathValue("id")); err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.engine.Tables(r.Context())
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, tables)
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
