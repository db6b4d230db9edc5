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


package scoring

import "errors"

var (
	// ErrQueryRequired is returned when a scorer is invoked without a query.
	ErrQueryRequired = errors.New("query required")

	// ErrStatsRequired is returned when a statistical scorer is invoked without corpus statistics.
	ErrStatsRequired = errors.New("corpus statistics required")

	// ErrEmbeddingTimeout is returned when an embedding call exceeds the section timeout.
	ErrEmbeddingTimeout = errors.New("embedding timed out")

	// errNoEmbeddingFunc guards the vector collection against embedding on its own.
	errNoEmbeddingFunc = errors.New("collection embeds nothing itself")
)
