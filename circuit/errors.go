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

package circuit

import "fmt"

const (
	reasonUserExists     = "User ID already exists"
	reasonUserNotFound   = "User does not exist"
	reasonUserNotActive  = "User not active"
	reasonUser1NotFound  = "User 1 does not exist"
	reasonUser2NotFound  = "User 2 does not exist"
	reasonUser1NotActive = "User 1 not active"
	reasonUser2NotActive = "User 2 not active"

	reasonUnderflow = "result of subtraction would be negative"
)

// PreconditionError is returned when an operation's assertion over the ledger fails
type PreconditionError struct {
	Operation string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

// UnderflowError is returned when a checked unsigned subtraction would go negative
type UnderflowError struct {
	Operation string
}

func (e *UnderflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, reasonUnderflow)
}
