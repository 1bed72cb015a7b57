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

package codec

import "fmt"

// Error is returned when bytes cannot be decoded to, or a value cannot be encoded as, a type
type Error struct {
	Type   string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("codec error: %s: %s", e.Type, e.Reason)
}

func widthError(typ string, expected, got int) *Error {
	return &Error{Type: typ, Reason: fmt.Sprintf("expected %d bytes, got %d", expected, got)}
}
