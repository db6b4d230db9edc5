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


// Package fastembed provides an in-process ai.Provider that runs ONNX
// embedding models on the CPU through fastembed-go.
//
// Models are downloaded on first use into the configured model cache
// directory; later runs work offline. Builds without cgo get a stub whose
// constructor returns ErrNotAvailable.
//
//	provider, err := fastembed.NewProvider(ai.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
// Sections are embedded as passages and the persona/task text as a query,
// following the BGE models' asymmetric prompting.
package fastembed
