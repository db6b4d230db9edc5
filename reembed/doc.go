// Package reembed embeds the candidate sections of a job ahead of ranking.
//
// Run against a caching embedder, it fills the persistent embedding cache so
// later ranking jobs over the same documents skip the embedding model, for
// instance after switching models. Sections are embedded in batches with
// retry and exponential backoff, and progress is reported to a writer.
package reembed
