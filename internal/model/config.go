package model

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	ConfigFileName = "config.xml"
	flagsElement   = "Flags"
)

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Config is the content of config.xml. Flags is the only recognized option.
type Config struct {
	Flags string `yaml:"flags"`
}

// DefaultConfigPath returns config.xml located alongside the running binary.
func DefaultConfigPath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), ConfigFileName), nil
}

// LoadConfigFile opens path and parses it with LoadConfig. The returned error,
// if any, is always a *ConfigError.
func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classifyOpen(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return nil, &ConfigError{Kind: ConfigUnknown, Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &ConfigError{Kind: ConfigUnknown, Path: path, Err: fmt.Errorf("not a regular file: %s", info.Mode())}
	}

	cfg, err := LoadConfig(f)
	if err != nil {
		var cerr *ConfigError
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads an XML document from r. The document must be well-formed,
// have a single root and contain exactly one Flags element at any depth. The
// text content of that element, including text of nested elements, becomes
// Config.Flags verbatim. A leading UTF-8 byte order mark is skipped and the
// encoding declared by the document is honoured.
func LoadConfig(r io.Reader) (*Config, error) {
	br := bufio.NewReader(r)
	if prefix, _ := br.Peek(len(utf8BOM)); bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	dec := xml.NewDecoder(br)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		depth     int
		roots     int
		matches   int
		capturing bool
		capDepth  int
		flags     strings.Builder
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var syntaxErr *xml.SyntaxError
			if errors.As(err, &syntaxErr) {
				return nil, &ConfigError{Kind: ConfigMalformed, Err: err}
			}
			return nil, &ConfigError{Kind: ConfigUnknown, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return nil, &ConfigError{Kind: ConfigMalformed, Err: errors.New("multiple root elements")}
				}
			}
			depth++
			if t.Name.Local == flagsElement {
				matches++
				if matches == 1 {
					capturing = true
					capDepth = depth
				}
			}
		case xml.EndElement:
			if capturing && depth == capDepth {
				capturing = false
			}
			depth--
		case xml.CharData:
			if depth == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, &ConfigError{Kind: ConfigMalformed, Err: errors.New("data at the root level")}
				}
				continue
			}
			if capturing {
				flags.Write(t)
			}
		}
	}

	if roots == 0 {
		return nil, &ConfigError{Kind: ConfigMalformed, Err: errors.New("root element is missing")}
	}
	if matches != 1 {
		return nil, &ConfigError{Kind: ConfigAmbiguous, Err: fmt.Errorf("found %d %s elements, expected 1", matches, flagsElement)}
	}

	return &Config{Flags: flags.String()}, nil
}
