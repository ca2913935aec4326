// Package converter turns HTML into a fixed-layout document by shelling out to an external tool.
package converter

import (
	"context"
	"github.com/pkg/errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrConversion marks every failure of the external converter.
var ErrConversion = errors.New("conversion failed")

const (
	inputPlaceholder  = "{input}"
	outputPlaceholder = "{output}"
)

// Converter is the narrow seam between the exporter and whatever produces the fixed-layout bytes.
type Converter interface {
	Convert(ctx context.Context, html []byte) ([]byte, error)
}

// Command runs an external program such as pandoc or wkhtmltopdf.
// Args may contain {input} and {output}; missing placeholders are appended in that order.
type Command struct {
	Name      string
	Args      []string
	Extension string
	// TempDir is the parent for the per-call scratch directory; empty means os.TempDir().
	TempDir string
}

// ensure Command implements Converter
var _ Converter = &Command{}

// Convert writes html into a fresh scratch directory, runs the command against it and
// returns the produced file. The scratch directory is removed on every return path.
func (c *Command) Convert(ctx context.Context, html []byte) ([]byte, error) {
	dir, err := os.MkdirTemp(c.TempDir, "ebook-convert-")
	if err != nil {
		return nil, errors.Wrap(err, "unable to create scratch directory")
	}
	defer os.RemoveAll(dir)

	inputPath := filepath.Join(dir, "document.html")
	outputPath := filepath.Join(dir, "document."+strings.TrimPrefix(c.extension(), "."))

	if err := os.WriteFile(inputPath, html, 0o600); err != nil {
		return nil, errors.Wrap(err, "unable to write converter input")
	}

	cmd := exec.CommandContext(ctx, c.Name, c.arguments(inputPath, outputPath)...)
	cmd.Dir = dir
	outputRaw, err := cmd.CombinedOutput()
	if err != nil {
		return nil, errors.Wrapf(ErrConversion, "error calling %s: %v: %s", c.Name, err, strings.TrimSpace(string(outputRaw)))
	}

	document, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, errors.Wrapf(ErrConversion, "%s produced no output: %v", c.Name, err)
	}
	return document, nil
}

func (c *Command) extension() string {
	if len(c.Extension) == 0 {
		return "pdf"
	}
	return c.Extension
}

func (c *Command) arguments(inputPath, outputPath string) []string {
	args := make([]string, 0, len(c.Args)+2)
	var hasInput, hasOutput bool
	for _, a := range c.Args {
		if strings.Contains(a, inputPlaceholder) {
			hasInput = true
		}
		if strings.Contains(a, outputPlaceholder) {
			hasOutput = true
		}
		a = strings.ReplaceAll(a, inputPlaceholder, inputPath)
		a = strings.ReplaceAll(a, outputPlaceholder, outputPath)
		args = append(args, a)
	}
	if !hasInput {
		args = append(args, inputPath)
	}
	if !hasOutput {
		args = append(args, outputPath)
	}
	return args
}

// Func adapts a plain function to Converter; handy for tests and for in-process converters.
type Func func(ctx context.Context, html []byte) ([]byte, error)

func (f Func) Convert(ctx context.Context, html []byte) ([]byte, error) {
	return f(ctx, html)
}
