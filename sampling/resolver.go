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

package sampling

import (
	"fmt"

	"github.com/poiesic/lmtune/core"
)

// ResolveVariables samples every variable in declaration order and returns
// the group's lookup table. Variables are sampled against an empty table, so
// a lookup variable fails with core.ErrKeyNotFound. The first error aborts
// the resolution.
func (s *Sampler) ResolveVariables(variables []core.NamedSpec) (core.Lookup, error) {
	lookup := make(core.Lookup, len(variables))
	for _, v := range variables {
		val, err := s.Sample(v.Spec, nil)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		s.logger.Debug("resolved variable", "name", v.Name, "value", val.String())
		lookup[v.Name] = val
	}
	return lookup, nil
}
