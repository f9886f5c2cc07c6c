package embedding

import (
	"strings"
	"unicode"
)

const (
	clsTokenID = 101
	sepTokenID = 102
	// Word ids are hashed into [firstWordID, vocabSize); lower ids are special tokens.
	firstWordID      = 1000
	vocabSize        = 30000
	defaultMaxTokens = 256
)

// Tokenizer produces token IDs for BERT-style models (input_ids, attention_mask, token_type_ids).
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// SimpleTokenizer is an uncased word tokenizer with hash-based token IDs.
type SimpleTokenizer struct{}

// Tokenize returns [CLS] words... [SEP] padded to maxTokens. Words past the limit are dropped.
func (t *SimpleTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens < 2 {
		maxTokens = defaultMaxTokens
	}
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = clsTokenID
	attentionMask[0] = 1
	pos := 1
	for _, word := range SplitWords(text) {
		if pos >= maxTokens-1 {
			break
		}
		inputIDs[pos] = wordID(word)
		attentionMask[pos] = 1
		pos++
	}
	inputIDs[pos] = sepTokenID
	attentionMask[pos] = 1
	return inputIDs, attentionMask, tokenTypeIDs
}

func wordID(word string) int64 {
	return int64(firstWordID + HashString(word)%(vocabSize-firstWordID))
}

// SplitWords lowercases text and splits it on whitespace and punctuation.
// '+' and '#' stay in words so skills like "c++" and "c#" survive.
func SplitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#')
	})
}

// HashString returns a deterministic non-negative hash of s.
func HashString(s string) int {
	h := 0
	for _, c := range s {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	return h
}
