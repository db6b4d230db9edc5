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


// Package text provides the tokenization used by the lexical and
// probabilistic scorers and the sentence splitting used by refinement.
//
// Every component that derives term identity from text goes through the
// same Tokenizer so that a query term and a section term compare equal
// exactly when they normalize to the same string:
//
//	tok := text.NewTokenizer()
//	terms := tok.Tokens("Planning the Forms")  // ["plan", "form"]
//	grams := text.NGrams(terms, 1, 2)
//
// Normalization applies Unicode NFKC folding, lowercasing, stop word removal,
// a minimum token length and English Snowball stemming, in that order.
package text
