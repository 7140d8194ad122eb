// internal/settings/parser.go
//
// koanf parser adapter for TOML, plus extension-based parser selection.
//
// Settings files are TOML; YAML is accepted too so operators can drop a
// `.yaml` overlay next to the shipped files.
package settings

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	koanf "github.com/knadh/koanf/v2"
)

// TOML implements koanf.Parser on top of BurntSushi/toml.
type TOML struct{}

// TOMLParser returns a TOML parser.
func TOMLParser() *TOML { return &TOML{} }

// Unmarshal decodes a TOML document into a nested map.
func (p *TOML) Unmarshal(b []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

// Marshal encodes a nested map as TOML.
func (p *TOML) Marshal(o map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parserFor picks a parser from the file extension; TOML is the default.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return TOMLParser()
	}
}
