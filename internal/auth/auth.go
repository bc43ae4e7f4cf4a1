// Package auth authenticates users against a flat JSON credentials
// file. The file is validated against a schema on every load so a
// hand-edited entry with a missing field fails loudly instead of
// locking users out silently.
package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/contractops/contracts-tracker/internal/common"
)

const usersSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["usuario", "password"],
		"properties": {
			"usuario":  {"type": "string", "minLength": 1},
			"password": {"type": "string", "minLength": 1},
			"nombre":   {"type": "string"},
			"nivel":    {"type": "string"},
			"area":     {"type": "string"}
		}
	}
}`

// User is one credentials-file entry.
type User struct {
	Usuario  string `json:"usuario"`
	Password string `json:"password"`
	Nombre   string `json:"nombre,omitempty"`
	Nivel    string `json:"nivel,omitempty"`
	Area     string `json:"area,omitempty"`
}

var defaultUsers = []User{{
	Usuario:  "ADMIN",
	Password: "admin123",
	Nombre:   "ADMINISTRADOR",
	Nivel:    "admin",
	Area:     "SISTEMAS",
}}

// Service loads and checks credentials.
type Service struct {
	path   string
	schema *jsonschema.Schema
	logger *slog.Logger
}

func NewService(path string, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sch, err := jsonschema.CompileString("usuarios.json", usersSchema)
	if err != nil {
		return nil, fmt.Errorf("compile users schema: %w", err)
	}
	return &Service{path: path, schema: sch, logger: logger}, nil
}

// Load reads the credentials file, creating it with the default ADMIN
// entry when missing.
func (s *Service) Load() (map[string]User, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		s.logger.Warn("users file missing, creating default", "path", s.path)
		if err := s.writeUsers(defaultUsers); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	if err := s.schema.Validate(raw); err != nil {
		return nil, common.NewAppError("USERS_FILE_INVALID", "users file failed schema validation", err)
	}

	var list []User
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode users file: %w", err)
	}

	users := make(map[string]User, len(list))
	for _, u := range list {
		users[u.Usuario] = u
	}
	s.logger.Info("users loaded", "count", len(users))
	return users, nil
}

// Authenticate returns the matching user, or ErrUnauthorized.
func (s *Service) Authenticate(username, password string) (*User, error) {
	users, err := s.Load()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok || u.Password != password {
		s.logger.Warn("authentication failed", "user", username)
		return nil, common.ErrUnauthorized
	}
	s.logger.Info("user authenticated", "user", username)
	return &u, nil
}

// CreateUser appends a user to the credentials file.
func (s *Service) CreateUser(user User) error {
	if user.Usuario == "" || user.Password == "" {
		return common.ErrInvalidInput
	}
	users, err := s.Load()
	if err != nil {
		return err
	}
	if _, exists := users[user.Usuario]; exists {
		return common.ErrAlreadyExists
	}

	list := make([]User, 0, len(users)+1)
	for _, u := range users {
		list = append(list, u)
	}
	list = append(list, user)
	if err := s.writeUsers(list); err != nil {
		return err
	}
	s.logger.Info("user created", "user", user.Usuario)
	return nil
}

func (s *Service) writeUsers(list []User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("users dir: %w", err)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	return nil
}
