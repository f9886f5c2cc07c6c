package matching

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/marketscan/internal/models"
	"github.com/hyperjump/marketscan/internal/vector"
)

// Metadata keys stored with every scan vector.
const (
	KeyScanID                = "scan_id"
	KeyJobTitle              = "job_title"
	KeyCompanyDomain         = "company_domain"
	KeyClientName            = "client_name"
	KeyRoleCategory          = "role_category"
	KeyExperienceLevel       = "experience_level"
	KeyComplexityScore       = "complexity_score"
	KeyRemoteWorkSuitability = "remote_work_suitability"
	KeyMustHaveSkills        = "must_have_skills"
	KeyRecommendedRegions    = "recommended_regions"
	KeyCreatedAt             = "created_at"
	KeyEmbeddingPreview      = "embedding_text_preview"
)

// numericKeys normalize to 0 instead of "" when absent.
var numericKeys = map[string]bool{
	KeyComplexityScore: true,
}

// EncodeList serializes a list field as a JSON array. Nil encodes as "[]".
func EncodeList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeList parses a list field written by EncodeList. Empty input is an empty list.
func DecodeList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return []string{}, fmt.Errorf("decode list: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// NormalizeMetadata flattens values into the scalar types a vector index accepts.
// Nil becomes "" (or 0 for numeric keys), string lists become JSON arrays, times
// become RFC3339 strings, and named string or integer types lose their names.
// The result never contains nil.
func NormalizeMetadata(in map[string]any) vector.Metadata {
	out := make(vector.Metadata, len(in))
	for k, v := range in {
		out[k] = normalizeValue(k, v)
	}
	return out
}

func normalizeValue(key string, v any) any {
	zero := func() any {
		if numericKeys[key] {
			return 0
		}
		return ""
	}
	switch t := v.(type) {
	case nil:
		return zero()
	case string, bool, int, int64:
		return t
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return zero()
		}
		return t
	case []string:
		return EncodeList(t)
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return zero()
		}
		return normalizeValue(key, rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32:
		return normalizeValue(key, rv.Float())
	case reflect.Slice, reflect.Array:
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = fmt.Sprint(rv.Index(i).Interface())
		}
		return EncodeList(items)
	}
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// scanMetadata builds the normalized metadata for a stored scan vector.
func scanMetadata(scanID, title, embeddingText string, a models.JobAnalysis, meta models.ScanVectorMetadata) vector.Metadata {
	complexity := a.ComplexityScore
	if complexity == 0 {
		complexity = models.DefaultComplexity
	}
	return NormalizeMetadata(map[string]any{
		KeyScanID:                scanID,
		KeyJobTitle:              title,
		KeyCompanyDomain:         meta.CompanyDomain,
		KeyClientName:            meta.ClientName,
		KeyRoleCategory:          a.RoleCategory,
		KeyExperienceLevel:       a.ExperienceLevel,
		KeyComplexityScore:       complexity,
		KeyRemoteWorkSuitability: a.RemoteWorkSuitability,
		KeyMustHaveSkills:        a.MustHaveSkills,
		KeyRecommendedRegions:    a.RegionNames(),
		KeyCreatedAt:             meta.CreatedAt,
		KeyEmbeddingPreview:      Preview(embeddingText),
	})
}

// fieldWarning is a metadata field that could not be decoded and was defaulted.
type fieldWarning struct {
	Field string
	Err   error
}

// decodeMatch converts an index hit into a SimilarityMatch. Malformed fields are
// defaulted and reported in the returned warnings.
func decodeMatch(id string, score float64, meta vector.Metadata) (models.SimilarityMatch, []fieldWarning) {
	var warnings []fieldWarning
	warn := func(field string, err error) {
		warnings = append(warnings, fieldWarning{Field: field, Err: err})
	}

	m := models.SimilarityMatch{
		ScanID:                readString(meta, KeyScanID),
		SimilarityScore:       score,
		JobTitle:              readString(meta, KeyJobTitle),
		CompanyDomain:         readString(meta, KeyCompanyDomain),
		ClientName:            readString(meta, KeyClientName),
		RoleCategory:          readString(meta, KeyRoleCategory),
		ExperienceLevel:       readString(meta, KeyExperienceLevel),
		RemoteWorkSuitability: readString(meta, KeyRemoteWorkSuitability),
		EmbeddingPreview:      readString(meta, KeyEmbeddingPreview),
	}
	if m.ScanID == "" {
		m.ScanID = id
	}

	complexity, err := readInt(meta, KeyComplexityScore, models.DefaultComplexity)
	if err == nil && (complexity < models.MinComplexity || complexity > models.MaxComplexity) {
		err = fmt.Errorf("value %d out of range", complexity)
	}
	if err != nil {
		warn(KeyComplexityScore, err)
		complexity = models.DefaultComplexity
	}
	m.ComplexityScore = complexity

	if m.MustHaveSkills, err = DecodeList(readString(meta, KeyMustHaveSkills)); err != nil {
		warn(KeyMustHaveSkills, err)
	}
	if m.RecommendedRegions, err = DecodeList(readString(meta, KeyRecommendedRegions)); err != nil {
		warn(KeyRecommendedRegions, err)
	}

	if s := readString(meta, KeyCreatedAt); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			warn(KeyCreatedAt, err)
		} else {
			m.CreatedAt = t
		}
	}
	return m, warnings
}

func readString(meta vector.Metadata, key string) string {
	switch v := meta[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// readInt accepts the numeric forms a metadata value takes after a JSON round trip.
func readInt(meta vector.Metadata, key string, def int) (int, error) {
	switch v := meta[key].(type) {
	case nil:
		return def, nil
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float32:
		return int(math.Round(float64(v))), nil
	case float64:
		return int(math.Round(v)), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return def, err
		}
		return int(math.Round(f)), nil
	case string:
		if strings.TrimSpace(v) == "" {
			return def, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def, err
		}
		return n, nil
	default:
		return def, fmt.Errorf("unsupported type %T", v)
	}
}
