package analysis

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/mtm/internal/core/domain"
)

const (
	// maxPairs caps how many frequent keyword pairs are turned into themes.
	maxPairs = 20

	// minKeywordLength is exclusive: keywords need more runes than this.
	minKeywordLength = 3

	// keywordTrim is stripped from both ends of each word.
	keywordTrim = ".,!?;:()[]{}"
)

type keywordPair struct {
	first, second string
}

// Cooccurrence groups documents by frequently co-occurring keyword pairs.
//
// A pair's count is the number of distinct documents containing both words.
// Pairs with count >= minSupport are ranked by count (ties keep discovery
// order) and the top 20 are visited in turn. Each pair claims the unclaimed
// documents containing both words; a document is claimed at most once, and a
// pair only becomes a theme if it still has minSupport documents.
func Cooccurrence(docs []Document, minSupport int) []domain.ThemeDraft {
	keywords := make([]map[string]struct{}, len(docs))
	counts := make(map[keywordPair]int)
	var discovered []keywordPair

	for i, doc := range docs {
		words := extractKeywords(doc.Text)
		keywords[i] = toSet(words)
		for a := 0; a < len(words); a++ {
			for b := a + 1; b < len(words); b++ {
				pair := makePair(words[a], words[b])
				if _, seen := counts[pair]; !seen {
					discovered = append(discovered, pair)
				}
				counts[pair]++
			}
		}
	}

	frequent := make([]keywordPair, 0, len(discovered))
	for _, pair := range discovered {
		if counts[pair] >= minSupport {
			frequent = append(frequent, pair)
		}
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		return counts[frequent[i]] > counts[frequent[j]]
	})
	if len(frequent) > maxPairs {
		frequent = frequent[:maxPairs]
	}

	claimed := make(map[int]bool, len(docs))
	var drafts []domain.ThemeDraft
	for _, pair := range frequent {
		var members []int
		for i := range docs {
			if claimed[i] {
				continue
			}
			_, hasFirst := keywords[i][pair.first]
			_, hasSecond := keywords[i][pair.second]
			if hasFirst && hasSecond {
				members = append(members, i)
			}
		}
		if len(members) < minSupport {
			continue
		}

		ids := make([]string, 0, len(members))
		for _, i := range members {
			claimed[i] = true
			ids = append(ids, docs[i].ID)
		}
		drafts = append(drafts, domain.ThemeDraft{
			Keywords:     []string{pair.first, pair.second},
			SupportCount: len(ids),
			SegmentIDs:   ids,
		})
	}
	return drafts
}

// extractKeywords returns the document's distinct keywords in first-seen order.
func extractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, field := range strings.Fields(strings.ToLower(text)) {
		word := strings.Trim(field, keywordTrim)
		if utf8.RuneCountInString(word) <= minKeywordLength {
			continue
		}
		if _, stop := keywordStopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	return words
}

func makePair(a, b string) keywordPair {
	if b < a {
		a, b = b, a
	}
	return keywordPair{first: a, second: b}
}
