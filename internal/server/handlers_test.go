package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractops/contracts-tracker/internal/auth"
	"github.com/contractops/contracts-tracker/internal/common"
	"github.com/contractops/contracts-tracker/internal/entity"
	"github.com/contractops/contracts-tracker/internal/export"
	"github.com/contractops/contracts-tracker/internal/extract"
	"github.com/contractops/contracts-tracker/internal/repository"
	"github.com/contractops/contracts-tracker/internal/textract"
	"github.com/contractops/contracts-tracker/internal/vocab"
)

type stubRepo struct {
	contracts []*entity.Contract
	file      []byte
	saveErr   error
	getErr    error
	deleteErr error
}

func (s *stubRepo) Save(context.Context, *repository.SaveRequest) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	return 1, nil
}

func (s *stubRepo) List(context.Context, repository.SearchFilters) ([]*entity.Contract, error) {
	return s.contracts, nil
}

func (s *stubRepo) GetFile(_ context.Context, id int64) (*entity.Contract, []byte, error) {
	if s.getErr != nil {
		return nil, nil, s.getErr
	}
	for _, c := range s.contracts {
		if c.ID == id {
			return c, s.file, nil
		}
	}
	return nil, nil, common.ErrNotFound
}

func (s *stubRepo) Delete(context.Context, int64) error {
	return s.deleteErr
}

func (s *stubRepo) Stats(context.Context) (*repository.Stats, error) {
	return &repository.Stats{TotalContracts: int64(len(s.contracts))}, nil
}

func newTestServer(t *testing.T, repo repository.ContractRepository) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authSvc, err := auth.NewService(filepath.Join(t.TempDir(), "usuarios.json"), logger)
	require.NoError(t, err)

	extractor := textract.NewExtractor(textract.Config{}, logger)
	assembler := extract.NewAssembler(vocab.NewMemoryStore(), "", logger)

	return New(
		common.ServerConfig{Addr: ":0", ShutdownTimeout: time.Second, MaxUploadBytes: 1 << 20},
		common.IngestConfig{OutputRoot: t.TempDir(), SpoolDir: t.TempDir()},
		extract.NewService(extractor, assembler),
		repo,
		export.NewService(filepath.Join(t.TempDir(), "missing.xlsx"), logger),
		authSvc,
		logger,
	)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubRepo{})
	rec := httptest.NewRecorder()

	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleLogin(t *testing.T) {
	srv := newTestServer(t, &stubRepo{})

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"usuario":"ADMIN","password":"admin123"}`)
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", body))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ADMIN", resp["usuario"])

	rec = httptest.NewRecorder()
	body = strings.NewReader(`{"usuario":"ADMIN","password":"nope"}`)
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{broken")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleList(t *testing.T) {
	repo := &stubRepo{contracts: []*entity.Contract{
		{ID: 1, ContractNumber: "641234567", Contractor: "ACME"},
		{ID: 2, ContractNumber: "648765432", Contractor: "GOLFO"},
	}}
	srv := newTestServer(t, repo)

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts?numero=64", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Contracts []entity.Contract `json:"contracts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Contracts, 2)
	assert.Equal(t, "641234567", resp.Contracts[0].ContractNumber)
}

func TestHandleDownload(t *testing.T) {
	repo := &stubRepo{
		contracts: []*entity.Contract{{
			ID:             7,
			ContractNumber: "641234567",
			Filename:       "contrato.pdf",
			ContentType:    "application/pdf",
		}},
		file: []byte("%PDF-fake"),
	}
	srv := newTestServer(t, repo)

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts/7/file", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "contrato.pdf")
	assert.Equal(t, "%PDF-fake", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts/99/file", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts/abc/file", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleDelete(t *testing.T) {
	srv := newTestServer(t, &stubRepo{})
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/contracts/3", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	srv = newTestServer(t, &stubRepo{deleteErr: common.ErrNotFound})
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/contracts/3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleStats(t *testing.T) {
	repo := &stubRepo{contracts: []*entity.Contract{{ID: 1}, {ID: 2}, {ID: 3}}}
	srv := newTestServer(t, repo)

	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats repository.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.TotalContracts)
}

func TestHandleExtractRequiresFileField(t *testing.T) {
	srv := newTestServer(t, &stubRepo{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/extract", strings.NewReader("no es multipart"))
	req.Header.Set("Content-Type", "text/plain")
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
