//go:build release

package core

func Assert(cond bool, format string, args ...interface{}) {}
