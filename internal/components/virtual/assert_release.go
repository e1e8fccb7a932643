//go:build !debug

package virtual

const debugAssertions = false

func assertf(bool, string, ...any) {}
