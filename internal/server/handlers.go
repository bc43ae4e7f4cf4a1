package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contractops/contracts-tracker/constants"
	"github.com/contractops/contracts-tracker/internal/common"
	"github.com/contractops/contracts-tracker/internal/ingest"
	"github.com/contractops/contracts-tracker/internal/repository"
	"github.com/contractops/contracts-tracker/internal/textract"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Usuario  string `json:"usuario"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.auth.Authenticate(req.Usuario, req.Password)
	if errors.Is(err, common.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.logger.Error("login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"usuario": user.Usuario,
		"nombre":  user.Nombre,
		"nivel":   user.Nivel,
		"area":    user.Area,
	})
}

// handleExtract runs the pipeline on an uploaded document without
// persisting anything: the caller gets the acquisition status and the
// extracted record to review.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	path, _, cleanup, ok := s.spoolRequestFile(w, r)
	if !ok {
		return
	}
	defer cleanup()

	format := constants.MapExtToFormat(filepath.Ext(path))
	res, err := s.extract.Text(r.Context(), path, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res.Status == textract.StatusError {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"status": "error", "message": res.Message})
		return
	}

	record := s.extract.Assembler.ContractData(res.Text)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": statusLabel(res.Status),
		"pages":  res.Pages,
		"method": res.Method,
		"record": record,
	})
}

// handleUpload runs the pipeline and persists the contract plus the
// original file bytes, then lays out the contract's folder tree.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	path, header, cleanup, ok := s.spoolRequestFile(w, r)
	if !ok {
		return
	}
	defer cleanup()

	usuario := r.FormValue("usuario")
	if usuario == "" {
		usuario = "sistema"
	}

	format := constants.MapExtToFormat(filepath.Ext(path))
	res, err := s.extract.Text(r.Context(), path, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if res.Status == textract.StatusError {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"status": "error", "message": res.Message})
		return
	}

	record := s.extract.Assembler.ContractData(res.Text)
	if record.ContractNumber == "" {
		writeError(w, http.StatusUnprocessableEntity, "no contract number detected")
		return
	}

	fileBytes, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("failed to read spooled file", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	id, err := s.repo.Save(r.Context(), &repository.SaveRequest{
		Record:      record,
		Filename:    header,
		ContentType: contentTypeForExt(filepath.Ext(path)),
		FileBytes:   fileBytes,
		UploadedBy:  usuario,
	})
	if errors.Is(err, common.ErrAlreadyExists) {
		writeError(w, http.StatusConflict, fmt.Sprintf("contract %s already exists", record.ContractNumber))
		return
	}
	if err != nil {
		s.logger.Error("failed to save contract", "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}

	if _, err := ingest.CreateContractFolders(s.ingest.OutputRoot, usuario, record.ContractNumber); err != nil {
		s.logger.Warn("failed to create contract folders", "contract_number", record.ContractNumber, "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":     id,
		"status": statusLabel(res.Status),
		"record": record,
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contracts, err := s.repo.List(r.Context(), repository.SearchFilters{
		ContractNumber: q.Get("numero"),
		Contractor:     q.Get("contratista"),
		Description:    q.Get("descripcion"),
		Area:           q.Get("area"),
	})
	if err != nil {
		s.logger.Error("failed to list contracts", "error", err)
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"contracts": contracts})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	contract, content, err := s.repo.GetFile(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to fetch contract file", "contract_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "download failed")
		return
	}
	w.Header().Set("Content-Type", contract.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", contract.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) handleCedula(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	contract, _, err := s.repo.GetFile(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to fetch contract", "contract_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	record := contract.ToRecord()
	xlsx, err := s.exporter.RenderCedula(record)
	if err != nil {
		s.logger.Error("failed to render cedula", "contract_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "cedula_"+contract.ContractNumber+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(xlsx)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contract id")
		return
	}
	err = s.repo.Delete(r.Context(), id)
	if errors.Is(err, common.ErrNotFound) {
		writeError(w, http.StatusNotFound, "contract not found")
		return
	}
	if err != nil {
		s.logger.Error("failed to delete contract", "contract_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repo.Stats(r.Context())
	if err != nil {
		s.logger.Error("failed to aggregate stats", "error", err)
		writeError(w, http.StatusInternalServerError, "stats failed")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// spoolRequestFile pulls the multipart "file" field into the spool
// directory. The returned cleanup removes the spooled copy.
func (s *Server) spoolRequestFile(w http.ResponseWriter, r *http.Request) (path, filename string, cleanup func(), ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return "", "", nil, false
	}
	defer file.Close()

	path, err = ingest.SpoolUpload(s.ingest.SpoolDir, header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", nil, false
	}
	return path, header.Filename, func() {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to remove spooled file", "path", path, "error", err)
		}
	}, true
}

func statusLabel(st textract.Status) string {
	switch st {
	case textract.StatusInfo:
		return "info"
	case textract.StatusError:
		return "error"
	default:
		return "ok"
	}
}

func contentTypeForExt(ext string) string {
	switch constants.NormalizeExt(ext) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
