// Package rules renders Cursor rule files (.mdc) from detection and
// workspace scan results and keeps them in sync on disk.
package rules

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// Extension is the file extension of Cursor rule files.
	Extension = ".mdc"
	// DefaultOutputDir is where rule files are written, relative to the repository root.
	DefaultOutputDir = ".cursor/rules"

	frontmatterDelim = "---"
)

// ErrNoFrontmatter is returned by Parse for content without a metadata header.
var ErrNoFrontmatter = errors.New("rule file has no frontmatter header")

// Header is the metadata block at the top of a rule file.
type Header struct {
	Description string `yaml:"description"`
	Globs       string `yaml:"globs,omitempty"`
	AlwaysApply bool   `yaml:"alwaysApply"`
}

// RuleFile is one rendered rule.
type RuleFile struct {
	Path   string // Relative to the output directory
	Header Header
	Body   string
}

// Content returns the bytes written to disk: the YAML header between
// "---" lines followed by the Markdown body.
func (r RuleFile) Content() (string, error) {
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(r.Header); err != nil {
		return "", fmt.Errorf("failed to encode header for %s: %w", r.Path, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode header for %s: %w", r.Path, err)
	}

	buf.WriteString(frontmatterDelim + "\n")
	body := strings.TrimLeft(r.Body, "\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// Parse splits rule file content into its header and body.
func Parse(content string) (Header, string, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, frontmatterDelim+"\n") {
		return Header{}, content, ErrNoFrontmatter
	}

	rest := content[len(frontmatterDelim)+1:]
	var raw, body string
	switch {
	case strings.HasPrefix(rest, frontmatterDelim+"\n"):
		body = rest[len(frontmatterDelim)+1:]
	default:
		end := strings.Index(rest, "\n"+frontmatterDelim+"\n")
		if end == -1 {
			if !strings.HasSuffix(rest, "\n"+frontmatterDelim) {
				return Header{}, content, ErrNoFrontmatter
			}
			end = len(rest) - len(frontmatterDelim) - 1
			raw = rest[:end]
		} else {
			raw = rest[:end]
			body = rest[end+len(frontmatterDelim)+2:]
		}
	}

	var h Header
	if err := yaml.Unmarshal([]byte(raw), &h); err != nil {
		return Header{}, body, fmt.Errorf("failed to parse header: %w", err)
	}
	return h, body, nil
}
