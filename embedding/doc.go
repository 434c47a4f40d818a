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

// Package embedding provides embedding tables for language-model features.
//
// An Embedding owns a vocab x dim weight matrix and maps token ids to rows.
// New builds a trainable table with Glorot-uniform initialization drawn from
// a seeded source. NewPretrained starts from given weights (or zeros) and,
// when feedable, accepts a replacement table through Feed.
//
// Regularizers only apply to trainable tables; a frozen table reports no
// regularizer and a zero penalty.
package embedding
