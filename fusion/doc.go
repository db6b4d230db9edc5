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


// Package fusion combines the per-section relevance signals into one score,
// orders sections by it and selects the top-N.
//
// The fused score is the weighted sum of the lexical, probabilistic and
// semantic scores. Weights must sum to 1, so the fused score of scores in
// [0,1] is itself in [0,1]. Ranking is a total order: fused score, then
// semantic score, then document and page order.
package fusion
