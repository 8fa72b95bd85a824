// Package extract pulls best-effort text and contact details out of
// uploaded resumes. Extraction here is explicitly heuristic: it trades
// correctness for zero dependencies on the file's structure, and every
// field it fails to find just falls through to manual entry.
package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/prepdesk/prepdesk/internal/model"
)

var (
	pdfTextObjectRegex = regexp.MustCompile(`\(([^)]+)\)`)
	controlCharsRegex  = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F]`)
	whitespaceRegex    = regexp.MustCompile(`\s+`)

	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRegex = regexp.MustCompile(`(?:\+?1[-\s.]?)?\(?[0-9]{3}\)?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4}`)

	// Name heuristics, tried in order: capitalized pair at the start of
	// the text, a labelled "Name:" field, then any capitalized pair.
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^([A-Z][a-z]+\s+[A-Z][a-z]+)`),
		regexp.MustCompile(`(?i:name:?)\s*([A-Z][a-z]+\s+[A-Z][a-z]+)`),
		regexp.MustCompile(`\b([A-Z][a-z]{2,}\s+[A-Z][a-z]{2,})\b`),
	}
)

// Text extracts plain text from an uploaded resume. Supported formats
// are PDF and DOCX, sniffed by magic bytes with the filename extension
// as a fallback; anything else returns model.ErrUnsupportedFormat.
func Text(filename string, data []byte) (string, error) {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF")), strings.EqualFold(filepath.Ext(filename), ".pdf"):
		return pdfText(data), nil
	case bytes.HasPrefix(data, []byte("PK\x03\x04")), strings.EqualFold(filepath.Ext(filename), ".docx"):
		return docxText(data)
	default:
		return "", fmt.Errorf("%w: %s (only PDF and DOCX are supported)", model.ErrUnsupportedFormat, filename)
	}
}

// pdfText scans the raw bytes for parenthesized PDF text objects. This
// misses encoded streams entirely; the result may be empty.
func pdfText(data []byte) string {
	var sb strings.Builder
	for _, m := range pdfTextObjectRegex.FindAllSubmatch(data, -1) {
		sb.Write(m[1])
		sb.WriteByte(' ')
	}
	text := controlCharsRegex.ReplaceAllString(sb.String(), " ")
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// docxText unzips word/document.xml and collects its character data.
func docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a valid DOCX archive", model.ErrUnsupportedFormat)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		return xmlCharData(rc)
	}
	return "", fmt.Errorf("%w: DOCX archive has no document.xml", model.ErrUnsupportedFormat)
}

func xmlCharData(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(sb.String(), " ")), nil
}

// ContactInfo pulls a best-effort {name, email, phone} triple out of
// resume text. Any field may come back empty; this never fails.
func ContactInfo(text string) model.ContactInfo {
	clean := strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))

	info := model.ContactInfo{ResumeText: clean}
	info.Email = emailRegex.FindString(clean)
	info.Phone = strings.TrimSpace(phoneRegex.FindString(clean))

	for _, p := range namePatterns {
		if m := p.FindStringSubmatch(clean); m != nil {
			info.Name = m[1]
			break
		}
	}
	return info
}
