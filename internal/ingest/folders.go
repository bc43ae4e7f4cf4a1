// Package ingest handles upload spooling and the on-disk folder tree
// that accompanies each stored contract.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/contractops/contracts-tracker/constants"
)

// ContractFolders is the per-contract directory layout:
// <root>/<user>/CONTRATOS/<number>/{CEDULA,ANEXOS,SOPORTES_FISICOS}.
type ContractFolders struct {
	Base     string
	Cedula   string
	Annexes  string
	Supports string
}

// CreateContractFolders builds the folder tree for one user/contract
// pair, creating any missing directories.
func CreateContractFolders(root, user, contractNumber string) (*ContractFolders, error) {
	if user == "" || contractNumber == "" {
		return nil, fmt.Errorf("user and contract number are required")
	}
	base := filepath.Join(root, strings.ToUpper(user), "CONTRATOS", contractNumber)
	f := &ContractFolders{
		Base:     base,
		Cedula:   filepath.Join(base, "CEDULA"),
		Annexes:  filepath.Join(base, "ANEXOS"),
		Supports: filepath.Join(base, "SOPORTES_FISICOS"),
	}
	for _, dir := range []string{f.Cedula, f.Annexes, f.Supports} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return f, nil
}

// SpoolUpload writes an uploaded stream to a uniquely named file in
// spoolDir, keeping the original extension so the extraction stage can
// pick a strategy. The caller removes the file when done.
func SpoolUpload(spoolDir, filename string, r io.Reader) (string, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return "", fmt.Errorf("unsupported extension: %q", ext)
	}
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		return "", fmt.Errorf("spool dir: %w", err)
	}

	path := filepath.Join(spoolDir, uuid.NewString()+"."+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write spool file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
