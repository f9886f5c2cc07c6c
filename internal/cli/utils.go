// Package cli provides output formatting for the marketscan CLI.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/search"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one line per item.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

const separator = "─────────────────────────────────────────────────────────"

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteScan writes one scan report and its similar scans to w in the given format.
func WriteScan(w io.Writer, scan *models.MarketScan, similar []models.SimilarityMatch, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, map[string]interface{}{"scan": scan, "similar_scans": similar})
	case OutputCompact:
		writeScanLine(w, scan)
		return nil
	default:
		writeScanText(w, scan)
		if len(similar) > 0 {
			fmt.Fprintf(w, "\nSimilar scans (%d):\n", len(similar))
			for i, m := range similar {
				writeMatch(w, i+1, m)
			}
		}
		return nil
	}
}

func writeScanText(w io.Writer, scan *models.MarketScan) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Scan:    %s [%s]\n", scan.ID, scan.Status)
	fmt.Fprintf(w, "Client:  %s <%s> (%s)\n", scan.ClientName, scan.ClientEmail, scan.CompanyDomain)
	fmt.Fprintf(w, "Title:   %s\n", scan.JobTitle)
	fmt.Fprintf(w, "Posting: %s\n", Truncate(scan.JobDescription, 200))
	if a := scan.Analysis; a != nil {
		fmt.Fprintf(w, "\nRole: %s | Level: %s | Complexity: %d/10 | Remote: %s\n",
			a.RoleCategory, a.ExperienceLevel, a.ComplexityScore, a.RemoteWorkSuitability)
		if len(a.MustHaveSkills) > 0 {
			fmt.Fprintf(w, "Must have:    %s\n", strings.Join(a.MustHaveSkills, ", "))
		}
		if len(a.NiceToHaveSkills) > 0 {
			fmt.Fprintf(w, "Nice to have: %s\n", strings.Join(a.NiceToHaveSkills, ", "))
		}
		if len(a.RecommendedRegions) > 0 {
			fmt.Fprintf(w, "Regions:      %s\n", strings.Join(a.RegionNames(), ", "))
		}
	}
	if s := scan.Salary; s != nil {
		fmt.Fprintf(w, "\nPay band: %s\n", s.RecommendedPayBand)
		regions := make([]string, 0, len(s.ByRegion))
		for r := range s.ByRegion {
			regions = append(regions, r)
		}
		sort.Strings(regions)
		for _, r := range regions {
			rng := s.ByRegion[r]
			fmt.Fprintf(w, "  %-15s %6d - %6d %s/%s (mid %d, saves %d%%)\n",
				r, rng.Low, rng.High, rng.Currency, rng.Period, rng.Mid, rng.SavingsVsUS)
		}
	}
	if scan.Status == models.ScanCompleted {
		fmt.Fprintf(w, "\nConfidence: %.2f from %d similar scans in %.1fs\n",
			scan.ConfidenceScore, scan.SimilarScansCount, scan.ProcessingTimeSeconds)
	}
}

func writeScanLine(w io.Writer, scan *models.MarketScan) {
	role := "-"
	if scan.Analysis != nil {
		role = string(scan.Analysis.RoleCategory)
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", scan.ID, scan.Status, scan.CompanyDomain, role, scan.JobTitle)
}

// WriteScanList writes a list of scans, one line each in text and compact format.
func WriteScanList(w io.Writer, scans []*models.MarketScan, format OutputFormat) error {
	if format == OutputJSON {
		return WriteJSON(w, scans)
	}
	if format == OutputText {
		fmt.Fprintf(w, "%d scans\n", len(scans))
	}
	for _, s := range scans {
		writeScanLine(w, s)
	}
	return nil
}

// WriteMatches writes similarity matches with the confidence they produced.
func WriteMatches(w io.Writer, matches []models.SimilarityMatch, confidence float64, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, map[string]interface{}{"similar_scans": matches, "confidence_score": confidence})
	case OutputCompact:
		for _, m := range matches {
			fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\n", m.SimilarityScore, m.ScanID, m.RoleCategory, m.JobTitle)
		}
		return nil
	default:
		fmt.Fprintf(w, "\nFound %d similar scans (confidence %.2f)\n\n", len(matches), confidence)
		for i, m := range matches {
			writeMatch(w, i+1, m)
		}
		return nil
	}
}

func writeMatch(w io.Writer, rank int, m models.SimilarityMatch) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "Rank: %d | Score: %.4f | %s (%s, complexity %d)\n",
		rank, m.SimilarityScore, m.RoleCategory, m.ExperienceLevel, m.ComplexityScore)
	fmt.Fprintf(w, "ID: %s\n", m.ScanID)
	if m.JobTitle != "" {
		fmt.Fprintf(w, "Title: %s (%s)\n", m.JobTitle, m.CompanyDomain)
	}
	if len(m.MustHaveSkills) > 0 {
		fmt.Fprintf(w, "Skills: %s\n", TruncateWords(strings.Join(m.MustHaveSkills, ", "), 12))
	}
	if m.Insights != nil && len(m.Insights.MatchReasons) > 0 {
		fmt.Fprintf(w, "Why: %s\n", strings.Join(m.Insights.MatchReasons, "; "))
	}
	fmt.Fprintln(w)
}

// WriteSearchResults writes one page of hybrid search hits.
func WriteSearchResults(w io.Writer, resp *search.Response, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return WriteJSON(w, resp)
	case OutputCompact:
		for _, h := range resp.Hits {
			fmt.Fprintf(w, "%.4f\t%s\t%s\n", h.Score, h.Scan.ID, h.Scan.JobTitle)
		}
		return nil
	default:
		fmt.Fprintf(w, "\nFound %d scans for %q (%dms)\n\n", resp.Total, resp.Query, resp.QueryTime)
		for _, h := range resp.Hits {
			fmt.Fprintln(w, separator)
			fmt.Fprintf(w, "Rank: %d | Score: %.4f (keyword %.2f, semantic %.2f)\n",
				h.Rank, h.Score, h.KeywordScore, h.SemanticScore)
			writeScanLine(w, h.Scan)
			if h.Snippet != "" {
				fmt.Fprintf(w, "%s\n", h.Snippet)
			}
			fmt.Fprintln(w)
		}
		return nil
	}
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

// HumanBytes formats a byte count with a binary unit.
func HumanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
