package repository

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contractops/contracts-tracker/internal/common"
	"github.com/contractops/contracts-tracker/internal/entity"
)

const loChunkSize = 1 << 20

// SearchFilters narrow ListContracts. Empty fields are ignored; string
// filters match as case-insensitive substrings.
type SearchFilters struct {
	ContractNumber string
	Contractor     string
	Description    string
	Area           string
}

// Stats aggregates the stored corpus.
type Stats struct {
	TotalContracts    int64  `json:"total_contracts"`
	TotalBytes        int64  `json:"total_bytes"`
	UniqueContractors int64  `json:"unique_contractors"`
	ActiveAreas       int64  `json:"active_areas"`
	OldestUpload      string `json:"oldest_upload,omitempty"`
	NewestUpload      string `json:"newest_upload,omitempty"`
}

// SaveRequest carries one extracted record plus the original file.
type SaveRequest struct {
	Record      entity.ContractRecord
	Filename    string
	ContentType string
	FileBytes   []byte
	UploadedBy  string
}

type ContractRepository interface {
	Save(ctx context.Context, req *SaveRequest) (int64, error)
	List(ctx context.Context, filters SearchFilters) ([]*entity.Contract, error)
	GetFile(ctx context.Context, id int64) (*entity.Contract, []byte, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*Stats, error)
}

type contractRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewContractRepository(pool *pgxpool.Pool, logger *slog.Logger) ContractRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &contractRepository{pool: pool, logger: logger}
}

// InitSchema creates the contracts table and its indexes. The table
// shape is also described declaratively under db/ent/schema.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS contratos (
			id BIGSERIAL PRIMARY KEY,
			area VARCHAR(500) NOT NULL,
			numero_contrato VARCHAR(100) UNIQUE NOT NULL,
			contratista VARCHAR(300) NOT NULL,
			monto_contrato VARCHAR(100),
			plazo_dias VARCHAR(50),
			descripcion TEXT,
			anexos JSONB,
			lo_oid OID NOT NULL,
			nombre_archivo VARCHAR(300) NOT NULL,
			tipo_archivo VARCHAR(50),
			tamano_bytes BIGINT NOT NULL,
			hash_sha256 VARCHAR(64) NOT NULL,
			fecha_subida TIMESTAMPTZ DEFAULT NOW(),
			usuario_subio VARCHAR(100) DEFAULT 'sistema',
			CONSTRAINT check_tamano_positivo CHECK (tamano_bytes > 0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contratos_numero ON contratos(numero_contrato)`,
		`CREATE INDEX IF NOT EXISTS idx_contratos_contratista ON contratos(contratista)`,
		`CREATE INDEX IF NOT EXISTS idx_contratos_area ON contratos(area)`,
		`CREATE INDEX IF NOT EXISTS idx_contratos_fecha ON contratos(fecha_subida)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Save stores the record plus the original file bytes as a Postgres
// large object, all inside one transaction so a failed insert leaves
// no orphan OID behind.
func (r *contractRepository) Save(ctx context.Context, req *SaveRequest) (int64, error) {
	sum := sha256.Sum256(req.FileBytes)
	hashHex := hex.EncodeToString(sum[:])

	annexJSON, err := json.Marshal(req.Record.Annexes)
	if err != nil {
		return 0, fmt.Errorf("marshal annexes: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, common.WrapError(err, "begin save")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	los := tx.LargeObjects()
	oid, err := los.Create(ctx, 0)
	if err != nil {
		return 0, common.WrapError(err, "create large object")
	}
	obj, err := los.Open(ctx, oid, pgx.LargeObjectModeWrite)
	if err != nil {
		return 0, common.WrapError(err, "open large object")
	}
	reader := bytes.NewReader(req.FileBytes)
	buf := make([]byte, loChunkSize)
	for {
		n, rerr := reader.Read(buf)
		if n > 0 {
			if _, werr := obj.Write(buf[:n]); werr != nil {
				_ = obj.Close()
				return 0, common.WrapError(werr, "write large object")
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			_ = obj.Close()
			return 0, common.WrapError(rerr, "read file bytes")
		}
	}
	if err := obj.Close(); err != nil {
		return 0, common.WrapError(err, "close large object")
	}

	uploadedBy := req.UploadedBy
	if uploadedBy == "" {
		uploadedBy = "sistema"
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO contratos (
			area, numero_contrato, contratista, monto_contrato,
			plazo_dias, descripcion, anexos,
			lo_oid, nombre_archivo, tipo_archivo, tamano_bytes, hash_sha256, usuario_subio
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		req.Record.Area, req.Record.ContractNumber, req.Record.Contractor,
		req.Record.Amount, req.Record.TermDays, req.Record.Description, annexJSON,
		oid, req.Filename, req.ContentType, int64(len(req.FileBytes)), hashHex, uploadedBy,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, common.NewAppError("DUPLICATE_CONTRACT",
				fmt.Sprintf("contract %s already exists", req.Record.ContractNumber), common.ErrAlreadyExists)
		}
		return 0, common.WrapError(err, "insert contract")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, common.WrapError(err, "commit save")
	}

	r.logger.Info("contract saved",
		"contract_id", id,
		"contract_number", req.Record.ContractNumber,
		"file_bytes", len(req.FileBytes),
	)
	return id, nil
}

func (r *contractRepository) List(ctx context.Context, filters SearchFilters) ([]*entity.Contract, error) {
	where := "1=1"
	args := []any{}
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, "%"+val+"%")
		where += fmt.Sprintf(" AND %s ILIKE $%d", col, len(args))
	}
	add("numero_contrato", filters.ContractNumber)
	add("contratista", filters.Contractor)
	add("descripcion", filters.Description)
	add("area", filters.Area)

	rows, err := r.pool.Query(ctx, `
		SELECT id, area, numero_contrato, contratista, monto_contrato,
		       plazo_dias, descripcion, anexos, nombre_archivo, tipo_archivo,
		       tamano_bytes, hash_sha256, fecha_subida, usuario_subio
		FROM contratos
		WHERE `+where+`
		ORDER BY fecha_subida DESC`, args...)
	if err != nil {
		r.logger.Error("failed to list contracts", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *contractRepository) GetFile(ctx context.Context, id int64) (*entity.Contract, []byte, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, common.WrapError(err, "begin fetch")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var c entity.Contract
	var oid uint32
	var annexJSON []byte
	err = tx.QueryRow(ctx, `
		SELECT id, area, numero_contrato, contratista, monto_contrato,
		       plazo_dias, descripcion, anexos, lo_oid, nombre_archivo,
		       tipo_archivo, tamano_bytes, hash_sha256, fecha_subida, usuario_subio
		FROM contratos WHERE id = $1`, id).Scan(
		&c.ID, &c.Area, &c.ContractNumber, &c.Contractor, &c.Amount,
		&c.TermDays, &c.Description, &annexJSON, &oid, &c.Filename,
		&c.ContentType, &c.SizeBytes, &c.HashSHA256, &c.UploadedAt, &c.UploadedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, common.ErrNotFound
	}
	if err != nil {
		return nil, nil, common.WrapError(err, "fetch contract")
	}
	c.Annexes = decodeAnnexes(annexJSON)

	los := tx.LargeObjects()
	obj, err := los.Open(ctx, oid, pgx.LargeObjectModeRead)
	if err != nil {
		return nil, nil, common.WrapError(err, "open large object")
	}
	content, err := io.ReadAll(obj)
	cerr := obj.Close()
	if err != nil {
		return nil, nil, common.WrapError(err, "read large object")
	}
	if cerr != nil {
		return nil, nil, common.WrapError(cerr, "close large object")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, nil, common.WrapError(err, "commit fetch")
	}

	sum := sha256.Sum256(content)
	if hex.EncodeToString(sum[:]) != c.HashSHA256 {
		r.logger.Warn("stored file hash mismatch", "contract_id", id)
	}
	return &c, content, nil
}

func (r *contractRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return common.WrapError(err, "begin delete")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var oid uint32
	err = tx.QueryRow(ctx, `SELECT lo_oid FROM contratos WHERE id = $1`, id).Scan(&oid)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrNotFound
	}
	if err != nil {
		return common.WrapError(err, "lookup contract")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM contratos WHERE id = $1`, id); err != nil {
		return common.WrapError(err, "delete contract")
	}
	// the object may already be gone; the row deletion still stands
	lobs := tx.LargeObjects()
	if err := lobs.Unlink(ctx, oid); err != nil {
		r.logger.Warn("failed to unlink large object", "contract_id", id, "oid", oid, "error", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return common.WrapError(err, "commit delete")
	}
	r.logger.Info("contract deleted", "contract_id", id)
	return nil
}

func (r *contractRepository) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	var oldest, newest *string
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(tamano_bytes), 0),
		       COUNT(DISTINCT contratista),
		       COUNT(DISTINCT area),
		       TO_CHAR(MIN(fecha_subida), 'YYYY-MM-DD'),
		       TO_CHAR(MAX(fecha_subida), 'YYYY-MM-DD')
		FROM contratos`).Scan(
		&s.TotalContracts, &s.TotalBytes, &s.UniqueContractors, &s.ActiveAreas, &oldest, &newest)
	if err != nil {
		return nil, common.WrapError(err, "aggregate stats")
	}
	if oldest != nil {
		s.OldestUpload = *oldest
	}
	if newest != nil {
		s.NewestUpload = *newest
	}
	return &s, nil
}

func scanContract(rows pgx.Rows) (*entity.Contract, error) {
	var c entity.Contract
	var annexJSON []byte
	err := rows.Scan(
		&c.ID, &c.Area, &c.ContractNumber, &c.Contractor, &c.Amount,
		&c.TermDays, &c.Description, &annexJSON, &c.Filename, &c.ContentType,
		&c.SizeBytes, &c.HashSHA256, &c.UploadedAt, &c.UploadedBy)
	if err != nil {
		return nil, err
	}
	c.Annexes = decodeAnnexes(annexJSON)
	return &c, nil
}

func decodeAnnexes(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var annexes []string
	if err := json.Unmarshal(raw, &annexes); err != nil || annexes == nil {
		return []string{}
	}
	return annexes
}
