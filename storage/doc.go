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

// Package storage provides the storage abstraction layer for lmtune.
//
// This package defines the interfaces that decouple persistence from the
// search logic:
//
//   - ConfigStore: base configs, search configs and sampled groups on disk
//     (implemented by storage/file)
//   - RunRepository: the archive of past search runs (implemented by
//     storage/badger)
//
// # Usage
//
// Open a run archive:
//
//	repo, backend, err := badger.OpenRunRepository("/path/to/archive")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// Use in tests with in-memory storage:
//
//	repo, backend, err := badger.NewMemoryRunRepository()
//
// # Thread Safety
//
// RunRepository implementations must be thread-safe and support
// concurrent access from multiple goroutines. ConfigStore implementations
// perform synchronous file I/O and hold no shared state.
//
// # Context Support
//
// RunRepository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage
