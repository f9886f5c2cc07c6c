package extract

import (
	"errors"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
)

// ErrEmptyPosting is returned when a document has no title line.
var ErrEmptyPosting = errors.New("posting has no text")

// Posting is a job posting parsed from a document, with any client details it named.
type Posting struct {
	models.JobPosting
	ClientName    string
	ClientEmail   string
	CompanyDomain string
}

type postingField int

const (
	fieldNone postingField = iota
	fieldTitle
	fieldDescription
	fieldChallenges
	fieldClient
	fieldEmail
	fieldDomain
)

var fieldLabels = map[string]postingField{
	"title":             fieldTitle,
	"job title":         fieldTitle,
	"role":              fieldTitle,
	"description":       fieldDescription,
	"job description":   fieldDescription,
	"hiring challenges": fieldChallenges,
	"challenges":        fieldChallenges,
	"client":            fieldClient,
	"client name":       fieldClient,
	"company":           fieldClient,
	"email":             fieldEmail,
	"client email":      fieldEmail,
	"domain":            fieldDomain,
	"company domain":    fieldDomain,
	"website":           fieldDomain,
}

// ParsePosting reads labeled lines ("Title: ...", "Hiring challenges: ...") when present.
// Without a title label the first non-empty line is the title; unlabeled lines after
// it form the description, and lines after a challenges label belong to the challenges.
func ParsePosting(text string) (Posting, error) {
	var (
		p       Posting
		desc    []string
		chall   []string
		current = fieldNone
	)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if field, value, ok := splitLabel(line); ok {
			current = field
			switch field {
			case fieldTitle:
				p.Title = value
			case fieldClient:
				p.ClientName = value
			case fieldEmail:
				p.ClientEmail = value
			case fieldDomain:
				p.CompanyDomain = value
			case fieldDescription:
				if value != "" {
					desc = append(desc, value)
				}
			case fieldChallenges:
				if value != "" {
					chall = append(chall, value)
				}
			}
			continue
		}

		if p.Title == "" {
			p.Title = strings.TrimSpace(strings.TrimLeft(line, "#*- "))
			continue
		}
		if current == fieldChallenges {
			chall = append(chall, line)
		} else {
			desc = append(desc, line)
		}
	}

	if p.Title == "" {
		return Posting{}, ErrEmptyPosting
	}
	p.Description = strings.Join(desc, "\n")
	p.HiringChallenges = strings.Join(chall, "\n")
	return p, nil
}

// splitLabel recognizes "Label: value" lines, ignoring markdown emphasis around the label.
func splitLabel(line string) (postingField, string, bool) {
	i := strings.Index(line, ":")
	if i <= 0 {
		return fieldNone, "", false
	}
	label := strings.ToLower(strings.Trim(line[:i], "#*_ "))
	field, ok := fieldLabels[label]
	if !ok {
		return fieldNone, "", false
	}
	return field, strings.TrimSpace(strings.Trim(line[i+1:], "*_ ")), true
}

// Request builds a scan request, filling client fields the document did not name from defaults.
func (p Posting) Request(defaults models.MarketScanRequest) models.MarketScanRequest {
	req := defaults
	req.JobTitle = p.Title
	req.JobDescription = p.Description
	req.HiringChallenges = p.HiringChallenges
	if p.ClientName != "" {
		req.ClientName = p.ClientName
	}
	if p.ClientEmail != "" {
		req.ClientEmail = p.ClientEmail
	}
	if p.CompanyDomain != "" {
		req.CompanyDomain = p.CompanyDomain
	}
	return req
}
