// Package all registers every key-value backend hidalgo supports.
package all

import (
	// import all implementations that hidalgo supports
	_ "github.com/hidal-go/hidalgo/kv/all"

	_ "github.com/cayleygraph/lpgrdf/graph/kv"
)
