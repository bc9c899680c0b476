// Package runtimex contains assertions that panic when violated. We use
// them for programmer errors and in test helpers, never for I/O errors that
// the user could trigger.
package runtimex

import "fmt"

// PanicOnError panics with a wrapped err when err is not nil.
func PanicOnError(err error, message string) {
	if err != nil {
		panic(fmt.Errorf("%s: %w", message, err))
	}
}

// Try1 returns v1 or panics if err is not nil.
func Try1[T1 any](v1 T1, err error) T1 {
	PanicOnError(err, "Try1")
	return v1
}
