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

import (
	"fmt"
	"strings"
)

// ValidateSection validates a candidate section according to domain rules.
//
// Validation rules:
//   - Text must not be blank
//   - WordCount must be at least minWords
//
// NOT validated:
//   - Title (may be empty or derived)
//   - Document (detached sections are allowed in tests)
func ValidateSection(section *Section, minWords int) error {
	if section == nil {
		return fmt.Errorf("%w: section is nil", ErrInvalidSection)
	}

	if strings.TrimSpace(section.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSection, ErrEmptyContent)
	}

	if section.WordCount < minWords {
		return fmt.Errorf("%w: %w: %d < %d", ErrInvalidSection, ErrSectionTooShort, section.WordCount, minWords)
	}

	return nil
}

// ValidateJob checks that a job can produce a query.
// Documents may be empty here; an empty corpus yields an empty result, not an error.
func ValidateJob(job *Job) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidQuery)
	}
	if strings.TrimSpace(job.Persona) == "" && strings.TrimSpace(job.Task) == "" {
		return fmt.Errorf("%w: persona and task are both empty", ErrInvalidQuery)
	}
	return nil
}
