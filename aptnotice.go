// Package aptnotice ingests housing-subscription announcement PDFs and
// answers questions about them. Documents are split into typed layout
// blocks, rendered to markdown, chunked along section headings and indexed
// for semantic search scoped to a single document.
//
// This package contains domain types, pure transformation functions and
// service interfaces following Ben Johnson's Standard Package Layout.
// Implementations live in subdirectories named after their primary
// dependency (e.g., pdf/, sqlite/, gemini/).
package aptnotice
