package matching

import (
	"strings"
	"testing"

	"github.com/hyperjump/marketscan/pkg/utils"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTextBuilder_Build(t *testing.T) {
	b := NewTextBuilder(0, nil)
	got := b.Build("  Data   Analyst ", "Build\tdashboards.\n\nOwn  reporting.")
	assert.Equal(t, "Job Title: Data Analyst Job Description: Build dashboards. Own reporting.", got)
	assert.Equal(t, DefaultMaxChars, b.MaxChars())
}

func TestTextBuilder_TruncatesLongDescriptions(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	b := NewTextBuilder(8000, zap.New(core))
	desc := strings.Repeat("a", 9000)

	first := b.Build("Analyst", desc)
	second := b.Build("Analyst", desc)

	assert.Equal(t, first, second)
	assert.Equal(t, 8003, utils.RuneLen(first))
	assert.True(t, strings.HasSuffix(first, "..."))
	assert.True(t, strings.HasPrefix(first, "Job Title: Analyst Job Description: aaa"))
	assert.Equal(t, 2, logs.FilterMessage("embedding text truncated").Len())
}

func TestTextBuilder_CountsCharactersNotBytes(t *testing.T) {
	b := NewTextBuilder(40, nil)
	got := b.Build("Analista", strings.Repeat("ñ", 50))
	assert.Equal(t, 43, utils.RuneLen(got))
	assert.True(t, strings.HasSuffix(got, "ñ..."))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	long := strings.Repeat("x", 250)
	assert.Equal(t, strings.Repeat("x", 200)+"...", Preview(long))
}
