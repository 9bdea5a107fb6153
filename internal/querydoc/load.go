package querydoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))
	}
}

// Loader reads documents from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader returns a Loader over fs. A nil fs reads the OS filesystem.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// Load reads, decodes and validates the document at path.
func (l *Loader) Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, &LoadError{Path: path, Code: CodeFormat, Message: err.Error()}
	}

	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		msg := fmt.Sprintf("reading document: %v", err)
		if errors.Is(err, os.ErrNotExist) {
			msg = "document not found"
		}
		return nil, &LoadError{Path: path, Code: CodeReadFailed, Message: msg, Err: err}
	}

	return Parse(format, path, data)
}

// Parse decodes and validates a document. name labels errors.
func Parse(format Format, name string, data []byte) (*Document, error) {
	var (
		doc *Document
		err error
	)
	switch format {
	case FormatYAML:
		doc, err = parseYAML(name, data)
	case FormatJSON:
		doc, err = parseJSON(name, data)
	case FormatCUE:
		doc, err = parseCUE(name, data)
	default:
		return nil, &LoadError{Path: name, Code: CodeFormat, Message: fmt.Sprintf("unsupported format %q", format)}
	}
	if err != nil {
		return nil, err
	}
	doc.Source = name

	if err := doc.Validate(); err != nil {
		return nil, &LoadError{Path: name, Code: CodeInvalid, Message: err.Error(), Err: err}
	}
	return doc, nil
}

func parseYAML(name string, data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Path: name, Code: CodeParse, Message: "document is empty", Err: err}
		}
		return nil, &LoadError{Path: name, Code: CodeParse, Message: err.Error(), Err: err}
	}
	return &doc, nil
}

func parseJSON(name string, data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		le := &LoadError{Path: name, Code: CodeParse, Message: err.Error(), Err: err}
		if errors.Is(err, io.EOF) {
			le.Message = "document is empty"
		}
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			le.Line = lineAt(data, syn.Offset)
		}
		return nil, le
	}
	return &doc, nil
}

// parseCUE evaluates the CUE source and decodes its JSON export. Export keeps
// field declaration order.
func parseCUE(name string, data []byte) (*Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(name, CodeParse, err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(name, CodeCUEEvaluate, err)
	}

	out, err := v.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(name, CodeCUEEvaluate, err)
	}
	return parseJSON(name, out)
}

func cueLoadError(name, code string, err error) *LoadError {
	le := &LoadError{Path: name, Code: code, Message: cueerrors.Details(err, nil), Err: err}
	le.Message = strings.TrimSpace(le.Message)
	for _, pos := range cueerrors.Positions(err) {
		if pos.IsValid() {
			le.Line = pos.Line()
			break
		}
	}
	return le
}

func lineAt(data []byte, offset int64) int {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	return bytes.Count(data[:offset], []byte("\n")) + 1
}
