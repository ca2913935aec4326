// Package export packages the session document into downloadable artifacts.
package export

import (
	"career-ebook-generator/internal/converter"
	"context"
	"fmt"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"strings"
	"unicode"
)

const (
	FilenameSuffix   = "_Career_Guide"
	FallbackBasename = "Ebook"
	HTMLContentType  = "text/html; charset=utf-8"

	FormatHTML = "html"
)

// Artifact is one downloadable file.
type Artifact struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Exporter produces artifacts; Converter is only needed for fixed-layout output.
type Exporter struct {
	Converter   converter.Converter
	Extension   string
	ContentType string
}

// HTML returns the document unchanged as a UTF-8 HTML file.
func HTML(document, community string) Artifact {
	return Artifact{
		Filename:    Filename(community, FormatHTML),
		ContentType: HTMLContentType,
		Content:     []byte(document),
	}
}

// Enabled reports whether fixed-layout export is available.
func (e *Exporter) Enabled() bool {
	return e != nil && e.Converter != nil
}

// Document converts the HTML document into the fixed-layout format.
func (e *Exporter) Document(ctx context.Context, document, community string) (Artifact, error) {
	if !e.Enabled() {
		return Artifact{}, fmt.Errorf("%w: no converter configured", converter.ErrConversion)
	}

	content, err := e.Converter.Convert(ctx, []byte(document))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Filename:    Filename(community, e.Extension),
		ContentType: e.ContentType,
		Content:     content,
	}, nil
}

// DocumentArtifact wraps already converted bytes, e.g. loaded back from the session.
func (e *Exporter) DocumentArtifact(content []byte, community string) Artifact {
	return Artifact{
		Filename:    Filename(community, e.Extension),
		ContentType: e.ContentType,
		Content:     content,
	}
}

// Filename derives "<Name>_Career_Guide.<ext>" from a community name.
// Diacritics are folded, each whitespace rune becomes '_' and any other character outside
// [A-Za-z0-9_-] is dropped. A name that leaves nothing behind yields "Ebook.<ext>".
func Filename(community, extension string) string {
	ext := strings.TrimPrefix(extension, ".")
	base := safeFragment(community)
	if len(base) == 0 {
		return FallbackBasename + "." + ext
	}
	return base + FilenameSuffix + "." + ext
}

func safeFragment(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}

	var sb strings.Builder
	for _, r := range strings.TrimSpace(folded) {
		switch {
		case unicode.IsSpace(r):
			sb.WriteRune('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'):
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
