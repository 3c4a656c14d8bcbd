// Package websearch is the fallback evidence source used when the vector
// store has nothing relevant.
//
// A Searcher talks to one backend (DuckDuckGo HTML or Google Custom Search).
// Client wraps a Searcher with rate limiting and deduplication and turns
// every failure into an error Response so callers never have to handle one.
package websearch
