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


// Package refine produces the bounded-length refined text of a selected
// section. Refinement is purely extractive: the output is the section text
// itself when it fits, otherwise whole sentences taken from it, and only a
// single over-long sentence is ever cut, at a word boundary.
//
// Two strategies are available. The lead strategy keeps the opening
// sentences. The query-focused strategy keeps the sentences sharing the most
// weighted query terms and emits them in their original order.
package refine
