// Retailrec - Hybrid Product Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/retailrec

package algorithms

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrEmptyCorpus is returned when Fit receives no documents.
var ErrEmptyCorpus = errors.New("empty corpus for TF-IDF fit")

// TFIDFConfig contains configuration for the TF-IDF vectorizer.
type TFIDFConfig struct {
	// MaxFeatures caps the vocabulary to the most frequent terms.
	// If <= 0, defaults to 1000.
	MaxFeatures int

	// MaxNGram is the longest word n-gram to emit. 1 = unigrams only.
	// If <= 0, defaults to 2.
	MaxNGram int

	// NumWorkers bounds the goroutines used for the similarity matrix.
	// If <= 0, defaults to 4.
	NumWorkers int
}

// DefaultTFIDFConfig returns the default vectorizer configuration.
func DefaultTFIDFConfig() TFIDFConfig {
	return TFIDFConfig{
		MaxFeatures: 1000,
		MaxNGram:    2,
		NumWorkers:  4,
	}
}

// SparseVector is a TF-IDF row with indices in ascending order.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// TFIDF is a term-frequency / inverse-document-frequency vectorizer.
//
// Documents are lowercased and split into runs of two or more word
// characters. English stop words are dropped before n-grams are formed.
// IDF is smoothed as ln((1+n)/(1+df)) + 1 and each row is L2-normalized.
type TFIDF struct {
	config       TFIDFConfig
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}

	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// NewTFIDF creates an unfitted vectorizer.
func NewTFIDF(cfg TFIDFConfig) *TFIDF {
	def := DefaultTFIDFConfig()
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = def.MaxFeatures
	}
	if cfg.MaxNGram <= 0 {
		cfg.MaxNGram = def.MaxNGram
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = def.NumWorkers
	}

	return &TFIDF{
		config:       cfg,
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}_]{2,}`),
		stopwords:    englishStopWords(),
	}
}

// Terms returns the fitted vocabulary in column order.
func (t *TFIDF) Terms() []string {
	return t.terms
}

// Analyze splits a document into the terms the vectorizer counts.
func (t *TFIDF) Analyze(doc string) []string {
	raw := t.tokenPattern.FindAllString(strings.ToLower(doc), -1)
	tokens := raw[:0]
	for _, tok := range raw {
		if _, stop := t.stopwords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}

	terms := make([]string, 0, len(tokens)*t.config.MaxNGram)
	terms = append(terms, tokens...)
	for n := 2; n <= t.config.MaxNGram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// FitTransform learns the vocabulary and IDF weights from docs and returns
// one L2-normalized vector per document.
func (t *TFIDF) FitTransform(ctx context.Context, docs []string) ([]SparseVector, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	counts := make([]map[string]int, len(docs))
	corpusFreq := make(map[string]int)
	docFreq := make(map[string]int)
	for d, doc := range docs {
		counts[d] = make(map[string]int)
		for _, term := range t.Analyze(doc) {
			counts[d][term]++
			corpusFreq[term]++
		}
		for term := range counts[d] {
			docFreq[term]++
		}
	}

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}

	t.buildVocabulary(corpusFreq, docFreq, len(docs))

	vectors := make([]SparseVector, len(docs))
	for d := range docs {
		vectors[d] = t.vectorize(counts[d])
	}
	return vectors, nil
}

// buildVocabulary keeps the MaxFeatures most frequent terms (ties broken
// by term) and assigns columns in term order.
func (t *TFIDF) buildVocabulary(corpusFreq, docFreq map[string]int, numDocs int) {
	terms := make([]string, 0, len(corpusFreq))
	for term := range corpusFreq {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if corpusFreq[terms[i]] != corpusFreq[terms[j]] {
			return corpusFreq[terms[i]] > corpusFreq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > t.config.MaxFeatures {
		terms = terms[:t.config.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(numDocs)
	t.terms = terms
	t.vocabulary = make(map[string]int, len(terms))
	t.idf = make([]float64, len(terms))
	for i, term := range terms {
		t.vocabulary[term] = i
		t.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1.0
	}
}

// vectorize weights raw term counts by IDF and L2-normalizes the result.
func (t *TFIDF) vectorize(counts map[string]int) SparseVector {
	var v SparseVector
	for term := range counts {
		idx, ok := t.vocabulary[term]
		if !ok {
			continue
		}
		v.Indices = append(v.Indices, idx)
	}
	sort.Ints(v.Indices)

	v.Values = make([]float64, len(v.Indices))
	var norm float64
	for i, idx := range v.Indices {
		w := float64(counts[t.terms[idx]]) * t.idf[idx]
		v.Values[i] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v.Values {
			v.Values[i] /= norm
		}
	}
	return v
}

// SparseCosine returns the cosine similarity of two sparse vectors.
func SparseCosine(a, b SparseVector) float64 {
	var dot, na, nb float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	for _, v := range a.Values {
		na += v * v
	}
	for _, v := range b.Values {
		nb += v * v
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// SimilarityMatrix computes the dense pairwise cosine matrix. The result is
// symmetric with a unit diagonal, including rows whose vector is empty.
func (t *TFIDF) SimilarityMatrix(ctx context.Context, vectors []SparseVector) ([][]float64, error) {
	n := len(vectors)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
		sim[i][i] = 1.0
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.NumWorkers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if ContextCancelled(gctx) {
				return gctx.Err()
			}
			// Each goroutine owns the upper triangle of row i and the
			// matching lower-triangle column cells, so writes never overlap.
			for j := i + 1; j < n; j++ {
				s := SparseCosine(vectors[i], vectors[j])
				sim[i][j] = s
				sim[j][i] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sim, nil
}
