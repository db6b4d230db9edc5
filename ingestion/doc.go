// Package ingestion turns a job's documents into candidate sections.
//
// The Pipeline reads every document of a job concurrently on a worker pool:
//   - A Reader extracts the text of each page (PDF or plain text)
//   - The Sectioner splits each page into titled sections
//
// Each document is bounded by a timeout. A document that cannot be read or
// sectioned is skipped and reported as a warning wrapping
// core.ErrSectionIngestion; the other documents are unaffected.
package ingestion
