package rewriting

import (
	"strings"
	"testing"

	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestCheckStrongVerb(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"listed verb", "Built a system", true},
		{"listed verb with comma", "Led, with two peers, a migration", true},
		{"past tense", "Refactored the billing module", true},
		{"weak start", "I worked on", false},
		{"article start", "The system was", false},
		{"short ed word", "Fed the pipeline", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checkStrongVerb(strings.Fields(tt.text)))
		})
	}
}

func TestCheckQuantifiedImpact(t *testing.T) {
	assert.True(t, checkQuantifiedImpact("Handled 1M requests"))
	assert.True(t, checkQuantifiedImpact("Cut costs by a third, saving %"))
	assert.False(t, checkQuantifiedImpact("Built a great system"))
	assert.False(t, checkQuantifiedImpact(""))
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		taboo []string
		want  types.StyleChecks
	}{
		{
			name: "strong quantified bullet",
			text: "Reduced p99 latency by 40% across twelve checkout services in production",
			want: types.StyleChecks{StrongVerb: true, Quantified: true, NoTaboo: true, WordCount: true},
		},
		{
			name:  "taboo phrase and too short",
			text:  "Responsible for various deployments",
			taboo: DefaultTabooPhrases,
			want:  types.StyleChecks{StrongVerb: false, Quantified: false, NoTaboo: false, WordCount: false},
		},
		{
			name: "too long",
			text: "Built " + strings.Repeat("very ", 30) + "things",
			want: types.StyleChecks{StrongVerb: true, Quantified: false, NoTaboo: true, WordCount: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateStyle(tt.text, tt.taboo))
		})
	}
}

func TestExtractLeadingVerb(t *testing.T) {
	assert.Equal(t, "Built", extractLeadingVerb("  Built, shipped and ran"))
	assert.Equal(t, "", extractLeadingVerb("   "))
}
