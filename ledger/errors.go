/*
 * Copyright 2017-2022 Provide Technologies Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ledger

import "fmt"

// PathError is returned when a path segment does not resolve to the expected node shape
type PathError struct {
	Op     string
	Key    string
	Reason string
}

func (e *PathError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("path error: %s %s: %s", e.Op, e.Key, e.Reason)
	}
	return fmt.Sprintf("path error: %s: %s", e.Op, e.Reason)
}
