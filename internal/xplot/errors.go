/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package xplot

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed marks input that cannot be interpreted; it aborts a parse.
	ErrMalformed = errors.New("malformed input")

	ErrMissingPayload = fmt.Errorf("%w: missing payload line", ErrMalformed)
	ErrFieldCount     = fmt.Errorf("%w: wrong number of fields", ErrMalformed)
	ErrNumber         = fmt.Errorf("%w: invalid number", ErrMalformed)

	// ErrUnknownColour is returned for an override token that is not in the
	// palette when the error policy is configured.
	ErrUnknownColour = errors.New("unknown colour")
)

// SyntaxError locates a fatal problem in the script.
type SyntaxError struct {
	Line int    // 1-based line the statement starts on
	Raw  string // trimmed statement text
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Raw)
}

func (e *SyntaxError) Unwrap() error { return e.Err }
