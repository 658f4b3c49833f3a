// Package dialog renders the operator-facing message catalog. Catalogs are
// flat yaml maps of message id to template; templates may carry `&X` style
// escapes (translated once at load time into the host's style encoding) and
// `%name%` placeholders (substituted at render time).
package dialog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.yml
var bundled embed.FS

// styleChar is the host runtime's style escape introducer (the section
// sign; '&' in source catalogs is the operator-editable alias for it).
const styleChar = '§'

// styleCodes are the style suffixes the host runtime understands. Any
// other '&' pair passes through untouched.
const styleCodes = "0123456789AaBbCcDdEeFfKkLlMmNnOoRrXx"

// ErrUnknownMessage reports a render of a message id the catalog does not
// contain. This is a programmer error, not operator input.
var ErrUnknownMessage = errors.New("unknown message id")

// Arg names a value injected into a template at every `%name%` occurrence.
type Arg struct {
	Name  string
	Value any
}

// String renders the injected value; a nil value falls back to the arg name.
func (a Arg) String() string {
	if a.Value == nil {
		return a.Name
	}

	return fmt.Sprint(a.Value)
}

// Dialog maps message ids to style-translated templates.
type Dialog struct {
	messages map[string]string
}

// Load reads the catalog for locale from dir, creating the directory and
// seeding it with the bundled template on first run.
func Load(dir, locale string) (*Dialog, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create dialog dir: %w", err)
	}

	path := filepath.Join(dir, locale+".yml")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = bundled.ReadFile("templates/" + locale + ".yml")
		if err != nil {
			return nil, fmt.Errorf("no bundled dialog for locale %q: %w", locale, err)
		}

		wErr := os.WriteFile(path, data, 0o644)
		if wErr != nil {
			return nil, fmt.Errorf("write dialog template: %w", wErr)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read dialog catalog: %w", err)
	}

	return Parse(data)
}

// Parse builds a catalog from a flat yaml mapping of id to template.
func Parse(data []byte) (*Dialog, error) {
	var raw map[string]string

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("parse dialog catalog: %w", err)
	}

	messages := make(map[string]string, len(raw))
	for id, template := range raw {
		messages[id] = translateStyles(template)
	}

	return &Dialog{messages: messages}, nil
}

// Render looks up id and substitutes every `%name%` with its arg value.
func (d *Dialog) Render(id string, args ...Arg) (string, error) {
	msg, ok := d.messages[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMessage, id)
	}

	for _, arg := range args {
		msg = strings.ReplaceAll(msg, "%"+arg.Name+"%", arg.String())
	}

	return msg, nil
}

// Has reports whether the catalog contains the message id.
func (d *Dialog) Has(id string) bool {
	_, ok := d.messages[id]
	return ok
}

func translateStyles(s string) string {
	runes := []rune(s)
	for i := 0; i+1 < len(runes); i++ {
		if runes[i] == '&' && strings.ContainsRune(styleCodes, runes[i+1]) {
			runes[i] = styleChar
		}
	}

	return string(runes)
}
