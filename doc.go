// Package impactgo is the query-processing core of an impact-ordered,
// anytime search engine.
//
// Given an inverted index whose postings are grouped by per-term quantised
// impact and delta-encoded, impactgo evaluates multi-term queries and
// returns the top-k documents ranked by the sum of impacts across matched
// postings. The accumulator arenas, the top-k heap, and the interchangeable
// retrieval strategies (simple, 1d_heap, 2d_heap, blockmax) trade memory,
// reset cost, and early termination against throughput.
//
// The root package exposes the strategy factory; the engine package drives
// whole queries against a loaded index; the index and blobstore packages
// load the immutable artifacts an external indexer wrote.
package impactgo
