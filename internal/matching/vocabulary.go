package matching

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// defaultSynonyms maps abbreviations and spelling variants to a canonical token.
// Values must already be normalized and must not appear as keys.
var defaultSynonyms = map[string]string{
	"js":          "javascript",
	"ecmascript":  "javascript",
	"ts":          "typescript",
	"k8s":         "kubernetes",
	"kube":        "kubernetes",
	"node":        "node.js",
	"nodejs":      "node.js",
	"reactjs":     "react",
	"react.js":    "react",
	"vuejs":       "vue",
	"vue.js":      "vue",
	"angularjs":   "angular",
	"nextjs":      "next.js",
	"expressjs":   "express",
	"express.js":  "express",
	"golang":      "go",
	"py":          "python",
	"postgres":    "postgresql",
	"psql":        "postgresql",
	"mongo":       "mongodb",
	"dotnet":      ".net",
	"csharp":      "c#",
	"cpp":         "c++",
	"gcp":         "google cloud",
	"tf":          "terraform",
	"ml":          "machine learning",
	"nlp":         "natural language processing",
	"ci":          "continuous integration",
	"rest":        "restful",
	"restapi":     "restful",
	"springboot":  "spring boot",
	"tailwindcss": "tailwind",
}

// defaultStopwords are dropped from responsibility statements before similarity.
var defaultStopwords = []string{
	"a", "an", "the",
	"and", "or", "but", "nor", "so", "yet",
	"of", "in", "on", "at", "to", "for", "with", "by", "from", "into", "onto",
	"over", "under", "about", "across", "through", "within", "via", "per",
	"as", "is", "are", "be", "been", "will", "can", "should", "must",
	"we", "you", "our", "your", "their", "its", "it", "this", "that", "these", "those",
	"who", "which", "what", "while", "when", "where",
	"all", "any", "other", "such", "etc",
}

// Vocabulary holds the synonym and stopword tables used during matching.
// A Vocabulary is read-only after construction and safe for concurrent use.
type Vocabulary struct {
	Synonyms  map[string]string
	Stopwords map[string]struct{}
}

// DefaultVocabulary returns a fresh copy of the built-in tables.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		Synonyms:  make(map[string]string, len(defaultSynonyms)),
		Stopwords: make(map[string]struct{}, len(defaultStopwords)),
	}
	for k, val := range defaultSynonyms {
		v.Synonyms[k] = val
	}
	for _, w := range defaultStopwords {
		v.Stopwords[w] = struct{}{}
	}
	return v
}

// vocabularyFile is the YAML shape accepted by LoadVocabulary
type vocabularyFile struct {
	Synonyms  map[string]string `yaml:"synonyms"`
	Stopwords []string          `yaml:"stopwords"`
}

// LoadVocabulary reads a YAML vocabulary file and merges it over the defaults.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

// ParseVocabulary parses YAML vocabulary overrides and merges them over the defaults.
// Keys and values are normalized; entries that normalize to nothing are ignored.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary YAML: %w", err)
	}

	v := DefaultVocabulary()
	for k, val := range file.Synonyms {
		key := Normalize(k)
		canonical := Normalize(val)
		if key == "" || canonical == "" || key == canonical {
			continue
		}
		v.Synonyms[key] = canonical
	}
	for _, w := range file.Stopwords {
		if word := strings.ToLower(strings.TrimSpace(w)); word != "" {
			v.Stopwords[word] = struct{}{}
		}
	}

	if err := v.validate(); err != nil {
		return nil, err
	}
	return v, nil
}

// validate rejects chained synonyms, which would make folding non-idempotent.
func (v *Vocabulary) validate() error {
	for key, canonical := range v.Synonyms {
		for _, tok := range strings.Fields(canonical) {
			if _, chained := v.Synonyms[tok]; chained {
				return fmt.Errorf("synonym %q maps to %q, which is itself folded", key, canonical)
			}
		}
	}
	return nil
}

// FoldSynonym maps a single token to its canonical spelling. Unknown tokens
// are returned unchanged. A trailing period is tolerated on lookup.
func (v *Vocabulary) FoldSynonym(token string) string {
	if v == nil || token == "" {
		return token
	}
	lower := strings.ToLower(token)
	if canonical, ok := v.Synonyms[lower]; ok {
		return canonical
	}
	if trimmed := strings.TrimRight(lower, "."); trimmed != lower {
		if canonical, ok := v.Synonyms[trimmed]; ok {
			return canonical
		}
	}
	return token
}

// Canonical normalizes s and folds every token. It is applied identically to
// match targets and to document text.
func (v *Vocabulary) Canonical(s string) string {
	tokens := strings.Fields(Normalize(s))
	for i, tok := range tokens {
		tokens[i] = v.FoldSynonym(tok)
	}
	return strings.Join(tokens, " ")
}

// IsStopword reports whether word is in the stopword table.
func (v *Vocabulary) IsStopword(word string) bool {
	if v == nil {
		return false
	}
	_, ok := v.Stopwords[word]
	return ok
}
