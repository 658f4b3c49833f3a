// Package config loads and validates the account store credentials file.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/playerledger/playerledger/internal/infra/sqlutils"
)

//go:embed credentials.yml
var credentialsTemplate []byte

var (
	// ErrFieldMissing reports an absent credentials field or section.
	ErrFieldMissing = errors.New("credentials field missing")

	// ErrFieldType reports a credentials field holding the wrong type.
	ErrFieldType = errors.New("credentials field has wrong type")

	// ErrFieldEmpty reports a credentials string field left empty.
	ErrFieldEmpty = errors.New("credentials field is empty")

	// ErrFieldRange reports a credentials value outside its valid range.
	ErrFieldRange = errors.New("credentials field out of range")

	// ErrTemplateCreated reports that the credentials file was absent and a
	// template was written in its place. The operator has to configure the
	// file before the subsystem can start.
	ErrTemplateCreated = errors.New("credentials template created, configure it before starting")
)

// Credentials holds validated connection parameters for the account store.
// It produces fresh handles on demand and never keeps one open.
type Credentials struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

type credentialsFile struct {
	MySQL *mysqlSection `yaml:"mysql"`
}

type mysqlSection struct {
	Host     *string `yaml:"host"`
	Port     *int    `yaml:"port"`
	Username *string `yaml:"username"`
	Password *string `yaml:"password"`
	Database *string `yaml:"database"`
}

// Load reads credentials from path. When the file does not exist yet, the
// bundled template is written there and ErrTemplateCreated is returned.
func Load(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		mkErr := os.MkdirAll(filepath.Dir(path), 0o755)
		if mkErr != nil {
			return nil, fmt.Errorf("create config dir: %w", mkErr)
		}

		wErr := os.WriteFile(path, credentialsTemplate, 0o600)
		if wErr != nil {
			return nil, fmt.Errorf("write credentials template: %w", wErr)
		}

		return nil, fmt.Errorf("%s: %w", path, ErrTemplateCreated)
	}

	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	return Parse(data)
}

// Parse validates a credentials document.
func Parse(data []byte) (*Credentials, error) {
	var file credentialsFile

	err := yaml.Unmarshal(data, &file)
	if err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %v", ErrFieldType, err)
		}

		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	if file.MySQL == nil {
		return nil, fmt.Errorf("%w: mysql", ErrFieldMissing)
	}

	sec := file.MySQL

	host, err := requireString("host", sec.Host)
	if err != nil {
		return nil, err
	}

	username, err := requireString("username", sec.Username)
	if err != nil {
		return nil, err
	}

	password, err := requireString("password", sec.Password)
	if err != nil {
		return nil, err
	}

	database, err := requireString("database", sec.Database)
	if err != nil {
		return nil, err
	}

	if sec.Port == nil {
		return nil, fmt.Errorf("%w: port", ErrFieldMissing)
	}

	port := *sec.Port
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: port %d not in [1, 65535]", ErrFieldRange, port)
	}

	return &Credentials{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Database: database,
	}, nil
}

func requireString(field string, value *string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%w: %s", ErrFieldMissing, field)
	}

	if *value == "" {
		return "", fmt.Errorf("%w: %s", ErrFieldEmpty, field)
	}

	return *value, nil
}

// URL is the mysql://host:port/database form of the target, safe for logs.
func (c *Credentials) URL() string {
	return fmt.Sprintf("mysql://%s:%d/%s", c.Host, c.Port, c.Database)
}

// DSN composes the driver connection string. clientFoundRows makes UPDATE
// report matched rows rather than changed rows; the store's rows-affected
// consistency check depends on it.
func (c *Credentials) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?clientFoundRows=true",
		c.Username, c.Password, c.Host, c.Port, c.Database)
}

// Open produces a fresh, pinged store handle.
func (c *Credentials) Open(ctx context.Context) (*sql.DB, error) {
	return sqlutils.OpenDB(ctx, c.DSN())
}
