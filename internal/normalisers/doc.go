// Package normalisers provides implementations of the Normaliser interface
// for fetched page formats. Each normaliser knows how to reduce a specific
// MIME type to a title and plain text.
//
// Normalisers are registered with the Registry at startup; the web fetcher
// dispatches on the Content-Type of each response.
package normalisers
