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


// Package engine runs one ranking job end to end.
//
// A job goes through these stages, in order:
//
//  1. Validate the configuration and the job, and build the query. Invalid
//     input fails here, before any scoring work.
//  2. Drop candidate sections below the minimum word count.
//  3. Build corpus statistics. Both statistical scorers need them.
//  4. Run the lexical, probabilistic and semantic scorers concurrently.
//  5. Fuse the scores, rank and select the top-N.
//  6. Refine the selected sections into bounded snippets.
//
// The job timeout bounds the semantic scorer, the only stage that waits on an
// external model. When it expires the sections not yet embedded are scored
// with the corpus mean, the ranking completes from what is available, and
// the result is marked partial.
//
// Each Engine owns a private Prometheus registry. Monitor hooks observe the
// stages of a single job.
package engine
