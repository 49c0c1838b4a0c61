package analysis

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrNoFeatures is returned when pruning leaves an empty vocabulary.
var ErrNoFeatures = errors.New("no terms remain after pruning")

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// VectorizerOptions bounds the TF-IDF vocabulary.
type VectorizerOptions struct {
	// MaxFeatures keeps the most frequent terms across the corpus.
	MaxFeatures int

	// MinDF drops terms found in fewer documents.
	MinDF int

	// MaxDF drops terms found in more than this fraction of documents.
	MaxDF float64

	// NGramMax is the longest n-gram (1 for unigrams, 2 adds bigrams).
	NGramMax int
}

// DefaultVectorizerOptions returns unigrams+bigrams, 1000 features,
// min_df 2 and max_df 0.95.
func DefaultVectorizerOptions() VectorizerOptions {
	return VectorizerOptions{
		MaxFeatures: 1000,
		MinDF:       2,
		MaxDF:       0.95,
		NGramMax:    2,
	}
}

// Relaxed returns the retry options used when the defaults prune every term.
func (o VectorizerOptions) Relaxed() VectorizerOptions {
	o.MinDF = 1
	o.MaxDF = 1.0
	o.NGramMax = 1
	return o
}

// Matrix is a dense, L2-normalised TF-IDF matrix.
type Matrix struct {
	// Terms is the vocabulary, sorted alphabetically. Column j is Terms[j].
	Terms []string

	// Rows holds one vector per input document.
	Rows [][]float64
}

// Vectorize builds a TF-IDF matrix with smoothed idf, ln((1+n)/(1+df))+1.
func Vectorize(texts []string, opts VectorizerOptions) (*Matrix, error) {
	n := len(texts)
	if n == 0 {
		return nil, ErrNoFeatures
	}
	if opts.NGramMax < 1 {
		opts.NGramMax = 1
	}

	counts := make([]map[string]int, n)
	df := make(map[string]int)
	total := make(map[string]int)
	for i, text := range texts {
		counts[i] = make(map[string]int)
		for _, term := range analyze(text, opts.NGramMax) {
			counts[i][term]++
			total[term]++
		}
		for term := range counts[i] {
			df[term]++
		}
	}

	maxCount := opts.MaxDF * float64(n)
	if opts.MaxDF <= 0 || opts.MaxDF >= 1 {
		maxCount = float64(n)
	}

	var kept []string
	for term, d := range df {
		if d < opts.MinDF || float64(d) > maxCount {
			continue
		}
		kept = append(kept, term)
	}
	if len(kept) == 0 {
		return nil, ErrNoFeatures
	}

	if opts.MaxFeatures > 0 && len(kept) > opts.MaxFeatures {
		sort.Slice(kept, func(i, j int) bool {
			if total[kept[i]] != total[kept[j]] {
				return total[kept[i]] > total[kept[j]]
			}
			return kept[i] < kept[j]
		})
		kept = kept[:opts.MaxFeatures]
	}
	sort.Strings(kept)

	index := make(map[string]int, len(kept))
	idf := make([]float64, len(kept))
	for j, term := range kept {
		index[term] = j
		idf[j] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	rows := make([][]float64, n)
	for i := range counts {
		row := make([]float64, len(kept))
		var norm float64
		for term, c := range counts[i] {
			j, ok := index[term]
			if !ok {
				continue
			}
			row[j] = float64(c) * idf[j]
			norm += row[j] * row[j]
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}

	return &Matrix{Terms: kept, Rows: rows}, nil
}

// analyze lowercases, tokenizes, drops stop words and emits n-grams.
func analyze(text string, ngramMax int) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := englishStopWords[tok]; !stop {
			tokens = append(tokens, tok)
		}
	}

	terms := make([]string, 0, len(tokens)*ngramMax)
	for size := 1; size <= ngramMax; size++ {
		for i := 0; i+size <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+size], " "))
		}
	}
	return terms
}
