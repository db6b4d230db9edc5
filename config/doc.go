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


// Package config loads sectionrank configuration from a YAML file and the
// environment.
//
// Precedence, highest first:
//  1. SECTIONRANK_* environment variables
//  2. The YAML file
//  3. core.DefaultConfig and ai.DefaultConfig
//
// Environment variables map onto YAML keys by dropping the prefix and
// splitting off the section name at the first underscore:
//
//	SECTIONRANK_RANKING_TOP_N            -> ranking.top_n
//	SECTIONRANK_RANKING_WEIGHTS_SEMANTIC -> ranking.weights.semantic
//	SECTIONRANK_EMBEDDING_PROVIDER       -> embedding.provider
package config
