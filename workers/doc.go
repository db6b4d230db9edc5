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


// Package workers wraps an ants pool with the fan-out and wait pattern used
// by corpus statistics, the scorers and ingestion.
//
// One Pool is owned by one engine and shared by every stage of a job, which
// bounds total concurrency to the configured worker count. Tasks must not
// submit further tasks to the same pool.
package workers
