package analysis

import "github.com/san-kum/lagsim/internal/dynamo"

var errTooShort = dynamo.Invalidf("trajectory needs at least 4 records")

func errIndex(idx, dim int) error {
	return dynamo.Invalidf("state index %d out of range for dimension %d", idx, dim)
}
