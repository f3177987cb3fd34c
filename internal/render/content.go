package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/goliatone/go-epub/book"
)

// DocumentContent renders only the document's content, wrapped in a bare
// XHTML shell with no metadata.
func DocumentContent(doc *book.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "content", string(doc.Content())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DocumentSummary renders the document's summary. A summary that is already
// a single well-formed XML element passes through untouched; anything else
// is wrapped in a description div so the result always has one root.
func DocumentSummary(doc *book.Document) ([]byte, error) {
	summary := doc.Metadata().Summary
	if isSingleRootedXML(summary) {
		return []byte(summary), nil
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "summary", summary); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isSingleRootedXML(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	dec := xml.NewDecoder(strings.NewReader(s))
	depth := 0
	roots := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return false
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return false
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return false
			}
		}
	}
	return roots == 1 && depth == 0
}
