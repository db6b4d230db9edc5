// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package scoring implements the three relevance signals computed for every
// candidate section of a job:
//
//   - LexicalScorer: TF-IDF cosine similarity over a capped n-gram vocabulary
//   - ProbabilisticScorer: Okapi BM25, min-max rescaled across the job
//   - SemanticScorer: embedding cosine similarity, degraded to the corpus
//     mean for sections that cannot be embedded
//
// Every scorer implements Scorer and returns one score in [0,1] per section,
// in input order. Scorers only read their Input; they can run concurrently
// over the same query, sections and corpus statistics.
package scoring
