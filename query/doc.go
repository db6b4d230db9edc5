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


// Package query turns a persona and a task into the weighted term
// representation shared by every scorer.
//
// Persona terms carry a lower weight than task terms. A term that appears in
// both accumulates both weights. Quoted phrases in either string become
// must-have phrases and are added as n-gram terms with the phrase weight:
//
//	b, _ := query.NewBuilder(text.NewTokenizer())
//	q, err := b.Build("HR professional", `Create "fillable forms" for onboarding`)
//	// q.MustHave == []string{"fillabl form"}
//
// Building is deterministic: identical inputs produce identical queries,
// including the order of q.Order.
package query
