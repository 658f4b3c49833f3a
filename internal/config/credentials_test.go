package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
mysql:
  host: "db.example.net"
  port: 3307
  username: "economy"
  password: "hunter2"
  database: "game"
`

func TestParse_Valid(t *testing.T) {
	creds, err := Parse([]byte(validDoc))

	require.NoError(t, err)
	assert.Equal(t, "db.example.net", creds.Host)
	assert.Equal(t, 3307, creds.Port)
	assert.Equal(t, "economy", creds.Username)
	assert.Equal(t, "hunter2", creds.Password)
	assert.Equal(t, "game", creds.Database)
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "missing mysql section",
			doc:     "other: {}\n",
			wantErr: ErrFieldMissing,
		},
		{
			name: "missing host",
			doc: `
mysql:
  port: 3306
  username: "u"
  password: "p"
  database: "d"
`,
			wantErr: ErrFieldMissing,
		},
		{
			name: "empty password",
			doc: `
mysql:
  host: "h"
  port: 3306
  username: "u"
  password: ""
  database: "d"
`,
			wantErr: ErrFieldEmpty,
		},
		{
			name: "port is not an int",
			doc: `
mysql:
  host: "h"
  port: "many"
  username: "u"
  password: "p"
  database: "d"
`,
			wantErr: ErrFieldType,
		},
		{
			name: "port zero rejected",
			doc: `
mysql:
  host: "h"
  port: 0
  username: "u"
  password: "p"
  database: "d"
`,
			wantErr: ErrFieldRange,
		},
		{
			name: "port above range",
			doc: `
mysql:
  host: "h"
  port: 65536
  username: "u"
  password: "p"
  database: "d"
`,
			wantErr: ErrFieldRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestURLAndDSN(t *testing.T) {
	creds, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, "mysql://db.example.net:3307/game", creds.URL())
	assert.Equal(t, "economy:hunter2@tcp(db.example.net:3307)/game?clientFoundRows=true", creds.DSN())
}

func TestLoad_GeneratesTemplateOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "economy", "credentials.yml")

	_, err := Load(path)
	require.ErrorIs(t, err, ErrTemplateCreated)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "mysql:")

	// The template itself parses; a second Load succeeds with the
	// placeholder values.
	creds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", creds.Host)
	assert.Equal(t, 3306, creds.Port)
}
