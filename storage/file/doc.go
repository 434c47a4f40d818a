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

// Package file implements storage.ConfigStore on the local filesystem.
//
// Base configurations are flat JSON objects that name their model_type.
// Search configs are JSON documents of the form
//
//	{"variables": {"<name>": <spec>, ...}, "hyperparams": {"<name>": <spec>, ...}}
//
// or HCL files (".hcl") with one block per entry:
//
//	variable "hidden" {
//	  stype = "discrete"
//	  dtype = "int"
//	  set   = [128, 256]
//	}
//
//	hyperparam "model_word_embed_dim" {
//	  stype = "lookup"
//	  dtype = "int"
//	  key   = "hidden"
//	}
//
// Declaration order is preserved in both formats. Sampled groups are written
// as config_hyperparams_<index>.json, one file per member.
package file
