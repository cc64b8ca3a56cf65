// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package loader

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/ragkit/core"
)

// Formats recognized by Load, keyed by lowercase file extension.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatPDF      = "pdf"
)

// Metadata keys set on loaded documents.
const (
	MetaFormat = "format"
	MetaPages  = "pages"
)

var formats = map[string]string{
	"":          FormatText,
	".txt":      FormatText,
	".text":     FormatText,
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".pdf":      FormatPDF,
}

// FormatOf returns the format Load would use for path.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := formats[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return format, nil
}

// Load reads the file at path into a document whose Source is the base
// file name.
func Load(path string) (*core.Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("component", "loader")
	logger.Debug("loading file", "path", path, "format", format)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	source := filepath.Base(path)
	if format == FormatPDF {
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return LoadPDF(f, info.Size(), source)
	}

	doc, err := LoadText(f, source)
	if err != nil {
		return nil, err
	}
	doc.Metadata[MetaFormat] = format
	return doc, nil
}

// LoadText reads r as UTF-8 text. Invalid byte sequences are replaced with
// U+FFFD.
func LoadText(r io.Reader, source string) (*core.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	text := strings.ToValidUTF8(string(data), "�")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoText, source)
	}

	doc := core.NewDocument(source, text)
	doc.Metadata = map[string]string{MetaFormat: FormatText}
	return doc, nil
}

// LoadPDF extracts the plain text of every page of the PDF in r.
func LoadPDF(r io.ReaderAt, size int64, source string) (doc *core.Document, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			doc, err = nil, fmt.Errorf("reading pdf %s: %v", source, p)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", source, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("reading pdf %s: %w", source, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return nil, fmt.Errorf("reading pdf %s: %w", source, err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoText, source)
	}

	doc = core.NewDocument(source, text)
	doc.Metadata = map[string]string{
		MetaFormat: FormatPDF,
		MetaPages:  strconv.Itoa(reader.NumPage()),
	}
	return doc, nil
}
