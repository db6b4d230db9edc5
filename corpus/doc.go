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


// Package corpus computes the job-scoped statistics shared by the lexical
// and probabilistic scorers: per-section n-gram counts, document
// frequencies, section lengths and the average section length.
//
// Statistics are built once per job, after the minimum-length filter, and
// are read-only afterwards. Nothing is persisted between jobs.
package corpus
