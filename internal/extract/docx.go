package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

const (
	docxDefaultBodyPath = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// paragraphRe matches one <w:p> paragraph including attributes; self-closing empty paragraphs are skipped.
	paragraphRe = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)

	// runTextRe matches <w:t>text</w:t> with any attributes.
	runTextRe = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)

	// Override elements of [Content_Types].xml and their attributes.
	overrideRe = regexp.MustCompile(`<Override[^>]*/?>`)
	partNameRe = regexp.MustCompile(`PartName="([^"]+)"`)
	contentRe  = regexp.MustCompile(`ContentType="([^"]+)"`)
)

// extractDOCX returns the text of each non-empty paragraph of the main document body on its own line.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}

	bodyPath := docxDefaultBodyPath
	if types, err := readZipFile(zr, contentTypesPath); err == nil {
		if p := mainDocumentPath(string(types)); p != "" {
			bodyPath = p
		}
	}
	body, err := readZipFile(zr, bodyPath)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}

	var lines []string
	for _, para := range paragraphRe.FindAllString(string(body), -1) {
		var b strings.Builder
		for _, run := range runTextRe.FindAllStringSubmatch(para, -1) {
			b.WriteString(html.UnescapeString(run[1]))
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// mainDocumentPath finds the main document part in [Content_Types].xml, with either attribute order.
func mainDocumentPath(types string) string {
	for _, override := range overrideRe.FindAllString(types, -1) {
		ct := contentRe.FindStringSubmatch(override)
		if len(ct) < 2 || ct[1] != docxMainContentType {
			continue
		}
		if name := partNameRe.FindStringSubmatch(override); len(name) > 1 {
			return strings.TrimPrefix(name[1], "/")
		}
	}
	return ""
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s not found", name)
}
