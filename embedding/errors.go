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

package embedding

import "errors"

var (
	// ErrInvalidShape indicates a non-positive dimension or a weight matrix of the wrong size.
	ErrInvalidShape = errors.New("invalid embedding shape")

	// ErrIndexOutOfRange indicates a token id outside [0, vocab size).
	ErrIndexOutOfRange = errors.New("token id out of range")

	// ErrNoIDs indicates a lookup with no token ids.
	ErrNoIDs = errors.New("no token ids")

	// ErrNotFeedable indicates Feed was called on a table that does not accept fed weights.
	ErrNotFeedable = errors.New("embedding is not feedable")

	// ErrUnknownRegularizer indicates an unrecognized regularization type.
	ErrUnknownRegularizer = errors.New("unknown regularizer")
)
