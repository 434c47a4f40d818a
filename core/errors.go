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

// Configuration errors
var (
	// ErrConfigNotFound indicates a configuration file does not exist.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrUnsupportedModelType indicates an unknown or missing model_type discriminator.
	ErrUnsupportedModelType = errors.New("unsupported model type")

	// ErrTypeMismatch indicates an override whose kind cannot be coerced to the default's kind.
	ErrTypeMismatch = errors.New("hyperparameter type mismatch")
)

// Search errors
var (
	// ErrUnsupportedType indicates an unknown distribution or value type, or a
	// distribution/value type combination that cannot be sampled.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrKeyNotFound indicates a lookup reference to a variable that has not been resolved.
	ErrKeyNotFound = errors.New("search key doesn't exist in look-up table")

	// ErrInvalidRange indicates distribution parameters that cannot be sampled from.
	ErrInvalidRange = errors.New("invalid distribution range")

	// ErrInvalidRecord indicates a binary record that cannot be decoded.
	ErrInvalidRecord = errors.New("invalid record encoding")

	// ErrInvalidSearchSpec indicates a search spec failed validation.
	ErrInvalidSearchSpec = errors.New("invalid search spec")

	// ErrInvalidGroupCount indicates a negative number of groups was requested.
	ErrInvalidGroupCount = errors.New("number of groups cannot be negative")
)
