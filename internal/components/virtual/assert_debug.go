//go:build debug

package virtual

import "fmt"

const debugAssertions = true

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("virtual: "+format, args...))
	}
}
