// Package services implements the driving port interfaces.
// Services contain the core business logic: the citation ledger, the
// in-memory vector store, similarity retrieval, section generation and
// the article pipeline that ties them together. They call out to
// infrastructure only through driven ports.
package services
