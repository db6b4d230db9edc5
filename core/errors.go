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


package core

import "errors"

// Job-level errors. ErrInvalidQuery and ErrInvalidConfig are fatal and are
// returned before any scoring work starts. The others are recovered and
// surface as warnings in the job metadata.
var (
	// ErrInvalidQuery indicates both persona and task are empty.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidConfig indicates a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrSectionIngestion indicates a single document could not be read or sectioned.
	ErrSectionIngestion = errors.New("section ingestion failure")

	// ErrScorerDegradation indicates a scorer could not score a section and fell back.
	ErrScorerDegradation = errors.New("scorer degradation")

	// ErrJobTimeout indicates the job exceeded its time budget and returned partial results.
	ErrJobTimeout = errors.New("job timeout exceeded")
)

// Domain validation errors
var (
	// ErrInvalidSection indicates a Section failed validation.
	ErrInvalidSection = errors.New("invalid section")

	// ErrEmptyContent indicates a section body is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrSectionTooShort indicates a section is below the minimum word count.
	ErrSectionTooShort = errors.New("section below minimum length")

	// ErrNoDocuments indicates a job names no documents.
	ErrNoDocuments = errors.New("job has no documents")
)
