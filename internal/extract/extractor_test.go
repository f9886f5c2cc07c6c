package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/marketscan/internal/models"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor(0)
	got, err := e.ExtractBytes([]byte("\ufeffData Analyst\r\nSQL daily"), ".txt")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Data Analyst\nSQL daily" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainInvalidUTF8(t *testing.T) {
	e := NewExtractor(0)
	got, err := e.ExtractBytes([]byte("hello\x80world"), ".md")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello\ufffdworld" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_unsupported(t *testing.T) {
	e := NewExtractor(0)
	if _, err := e.ExtractBytes([]byte("raw"), ".pptx"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if Supported(".PPTX") || !Supported(".PDF") {
		t.Error("Supported should be case-insensitive and exclude pptx")
	}
}

func TestExtract_rtf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posting.rtf")
	rtf := `{\rtf1\ansi\deff0 {\fonttbl {\f0 Times;}}\f0 Data Analyst\par Own SQL dashboards\par}`
	if err := os.WriteFile(path, []byte(rtf), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor(0).Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "Data Analyst") || !strings.Contains(got, "SQL dashboards") {
		t.Errorf("got %q", got)
	}
	if !Supported(".rtf") || !Supported(".ODT") {
		t.Error("rtf and odt should be supported")
	}
}

func TestExtractBytes_excelFieldRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title:")
	f.SetCellValue("Sheet1", "B1", "Retention Manager")
	f.SetCellValue("Sheet1", "A2", "Description")
	f.SetCellValue("Sheet1", "B2", "Own churn programs")
	f.SetCellValue("Sheet1", "A4", "one")
	f.SetCellValue("Sheet1", "B4", "two")
	f.SetCellValue("Sheet1", "C4", "three")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor(0).ExtractBytes(buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	want := "Title: Retention Manager\nDescription: Own churn programs\none\ttwo\tthree"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_fileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewExtractor(16).Extract(path); err == nil {
		t.Error("expected size limit error")
	}
	if _, err := NewExtractor(0).Extract(path); err != nil {
		t.Errorf("default limit rejected small file: %v", err)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	if _, err := NewExtractor(0).Extract("/nonexistent/path/file.txt"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func docxBody(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<w:document ` + wordNS + `><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(p)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestExtractBytes_docxParagraphs(t *testing.T) {
	body := docxBody(
		`<w:p w:rsidR="00A1"><w:pPr><w:pStyle w:val="Title"/></w:pPr><w:r><w:t>Brand </w:t></w:r><w:r><w:t xml:space="preserve">Marketing Manager</w:t></w:r></w:p>`,
		`<w:p/>`,
		`<w:p><w:r><w:t>Lead campaigns &amp; launches</w:t></w:r></w:p>`,
	)
	content := buildDocx(t, map[string]string{"word/document.xml": body})

	got, err := NewExtractor(0).ExtractBytes(content, ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Brand Marketing Manager\nLead campaigns & launches" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxContentTypes(t *testing.T) {
	body := docxBody(`<w:p><w:r><w:t>Custom part</w:t></w:r></w:p>`)
	for name, override := range map[string]string{
		"part name first": `<Override PartName="/word/document2.xml" ContentType="` + docxMainContentType + `"/>`,
		"content first":   `<Override ContentType="` + docxMainContentType + `" PartName="/word/document2.xml"/>`,
	} {
		t.Run(name, func(t *testing.T) {
			content := buildDocx(t, map[string]string{
				"[Content_Types].xml": `<Types>` + override + `</Types>`,
				"word/document2.xml":  body,
			})
			got, err := NewExtractor(0).ExtractBytes(content, ".docx")
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != "Custom part" {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestExtractBytes_docxMissingBody(t *testing.T) {
	content := buildDocx(t, map[string]string{"other.xml": "<x/>"})
	if _, err := NewExtractor(0).ExtractBytes(content, ".docx"); err == nil {
		t.Error("expected error when document body is missing")
	}
	if _, err := NewExtractor(0).ExtractBytes([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip input")
	}
}

func TestParsePosting_firstLineTitle(t *testing.T) {
	p, err := ParsePosting("\n# Community Manager\n\nRun our Discord.\nGrow engagement.\n")
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != "Community Manager" {
		t.Errorf("Title = %q", p.Title)
	}
	if p.Description != "Run our Discord.\nGrow engagement." {
		t.Errorf("Description = %q", p.Description)
	}
	if p.HiringChallenges != "" || p.ClientName != "" {
		t.Errorf("unexpected fields: %+v", p)
	}
}

func TestParsePosting_labels(t *testing.T) {
	text := strings.Join([]string{
		"**Client:** Acme Co",
		"Email: hiring@acme.com",
		"Website: https://www.Acme.com/careers",
		"Job Title: Ecommerce Manager",
		"Description: Run the Shopify store.",
		"Own merchandising.",
		"Hiring Challenges:",
		"Previous hires lacked Amazon experience.",
	}, "\n")
	p, err := ParsePosting(text)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != "Ecommerce Manager" || p.ClientName != "Acme Co" || p.ClientEmail != "hiring@acme.com" {
		t.Errorf("got %+v", p)
	}
	if p.Description != "Run the Shopify store.\nOwn merchandising." {
		t.Errorf("Description = %q", p.Description)
	}
	if p.HiringChallenges != "Previous hires lacked Amazon experience." {
		t.Errorf("HiringChallenges = %q", p.HiringChallenges)
	}

	req := p.Request(models.MarketScanRequest{ClientName: "Unknown", ClientEmail: "intake@example.com", CompanyDomain: "example.com"})
	if req.CompanyDomain != "https://www.Acme.com/careers" || req.ClientName != "Acme Co" || req.JobTitle != "Ecommerce Manager" {
		t.Errorf("request = %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("request should validate: %v", err)
	}
	if req.CompanyDomain != "acme.com" {
		t.Errorf("domain not normalized: %q", req.CompanyDomain)
	}
}

func TestParsePosting_empty(t *testing.T) {
	if _, err := ParsePosting(" \n\n"); !errors.Is(err, ErrEmptyPosting) {
		t.Errorf("expected ErrEmptyPosting, got %v", err)
	}
}

func TestExtractPosting_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posting.md")
	if err := os.WriteFile(path, []byte("Data Analyst\nSQL and Looker dashboards"), 0600); err != nil {
		t.Fatal(err)
	}
	p, err := NewExtractor(0).ExtractPosting(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != "Data Analyst" || p.Description != "SQL and Looker dashboards" {
		t.Errorf("got %+v", p)
	}
}
