// Package analysis discovers themes in a corpus of segments.
//
// Two strategies are available. Corpora with at least 2*K segments are
// vectorised with TF-IDF and partitioned by seeded k-means. Smaller corpora
// fall back to grouping segments by frequently co-occurring keyword pairs.
//
// Everything here is pure computation: no storage, no ID generation.
package analysis
