package service

import (
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// EmbeddingDims must match the recipes.embedding column.
const EmbeddingDims = 3

// GenerateEmbedding returns a small deterministic text signature used to
// rank search matches with pgvector's distance operator: letter count,
// vowel count and consonant count of the lower-cased text.
func GenerateEmbedding(text string) pgvector.Vector {
	var letters, vowels, consonants float32
	for _, r := range strings.ToLower(text) {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	return pgvector.NewVector([]float32{letters, vowels, consonants})
}
