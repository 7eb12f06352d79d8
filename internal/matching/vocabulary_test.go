package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldSynonym(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		token string
		want  string
	}{
		{token: "js", want: "javascript"},
		{token: "k8s", want: "kubernetes"},
		{token: "node", want: "node.js"},
		{token: "nodejs", want: "node.js"},
		{token: "Node", want: "node.js"},
		{token: "node.", want: "node.js"},
		{token: "node.js", want: "node.js"},
		{token: "haskell", want: "haskell"},
		{token: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, v.FoldSynonym(tt.token))
		})
	}
}

func TestDefaultVocabulary_CanonicalValuesAreFixedPoints(t *testing.T) {
	v := DefaultVocabulary()
	require.NoError(t, v.validate())

	for key, canonical := range v.Synonyms {
		assert.Equal(t, canonical, Normalize(canonical), "canonical for %q is not normalized", key)
		assert.Equal(t, canonical, v.Canonical(canonical), "canonical for %q is not a fixed point", key)
	}
}

func TestDefaultVocabulary_ReturnsCopy(t *testing.T) {
	a := DefaultVocabulary()
	a.Synonyms["js"] = "changed"

	b := DefaultVocabulary()
	assert.Equal(t, "javascript", b.Synonyms["js"])
}

func TestCanonical(t *testing.T) {
	v := DefaultVocabulary()

	assert.Equal(t, "i used node.js", v.Canonical("I used Node.js"))
	assert.Equal(t, "javascript typescript", v.Canonical("JS / TS"))
	assert.Equal(t, "react", v.Canonical("React.js"))
	assert.Equal(t, "", v.Canonical("   "))
}

func TestNilVocabulary(t *testing.T) {
	var v *Vocabulary
	assert.Equal(t, "js", v.FoldSynonym("js"))
	assert.False(t, v.IsStopword("the"))
}

func TestParseVocabulary(t *testing.T) {
	data := []byte(`
synonyms:
  GH: github
  "Amazon-Web-Services": aws
stopwords:
  - Responsible
  - "  "
`)

	v, err := ParseVocabulary(data)
	require.NoError(t, err)

	assert.Equal(t, "github", v.FoldSynonym("gh"))
	assert.Equal(t, "aws", v.FoldSynonym("amazon-web-services"))
	assert.Equal(t, "javascript", v.FoldSynonym("js"), "defaults are kept")
	assert.True(t, v.IsStopword("responsible"))
	assert.True(t, v.IsStopword("the"))
}

func TestParseVocabulary_RejectsChains(t *testing.T) {
	_, err := ParseVocabulary([]byte("synonyms:\n  ecma: js\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "itself folded")
}

func TestParseVocabulary_InvalidYAML(t *testing.T) {
	_, err := ParseVocabulary([]byte("synonyms: [unclosed"))
	assert.Error(t, err)
}

func TestLoadVocabulary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("synonyms:\n  tsx: typescript\n"), 0o644))

	v, err := LoadVocabulary(path)
	require.NoError(t, err)
	assert.Equal(t, "typescript", v.FoldSynonym("tsx"))

	_, err = LoadVocabulary(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
