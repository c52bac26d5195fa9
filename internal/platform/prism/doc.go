// Package prism provides a client for the Prism virtualization control
// plane's REST API.
//
// The API is asynchronous: every mutating call is accepted with a task
// handle, and the task is polled to a terminal state with WaitTask. Client
// methods map one-to-one to platform primitives and hold no polling state
// themselves. Transport and authentication failures surface as
// UnreachableError, distinct from platform-reported task failures
// (TaskError), because a request can be accepted while the underlying task
// later fails.
package prism
