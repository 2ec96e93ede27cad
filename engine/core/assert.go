//go:build !release

package core

import (
	"github.com/cockroachdb/errors"
)

// Assert panics with an assertion failure when cond is false. Builds tagged
// release compile it to a no-op, so it must only guard programmer errors.
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		err := errors.AssertionFailedf(format, args...)
		LogError("%s", err.Error())
		panic(err)
	}
}
