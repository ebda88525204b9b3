package btree

import "errors"

var (
	// ErrNotFound is returned by Find when the descent reaches a leaf
	// without locating the key.
	ErrNotFound = errors.New("key not found")

	// ErrNotSplittable means no prefix of the node exceeds the minimum fill
	// threshold while leaving an item behind. Should be unreachable for a
	// well-configured tree.
	ErrNotSplittable = errors.New("node too small to split")

	// ErrMalformedPage means the decoder hit an out-of-range offset or
	// length; the page is corrupt.
	ErrMalformedPage = errors.New("malformed page")

	// ErrItemTooLarge rejects keys or values that would not leave room for
	// a reasonable fan-out on a page.
	ErrItemTooLarge = errors.New("item too large")
)
