// Package html extracts the readable body of web pages.
//
// Boilerplate elements (scripts, navigation, headers, footers, asides and
// ad containers) are removed first. The main content is then taken from the
// first article-like container holding more than 100 characters of text,
// falling back to the concatenated paragraphs of the page.
package html
