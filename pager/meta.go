package pager

import "encoding/binary"

const (
	// metaPageNum is where the meta record lives; page 0 is never handed out
	// by the freelist.
	metaPageNum = PageNumber(0)

	pageNumSize = 8
)

// Meta is the page-0 record identifying the tree root and the freelist page.
// A root of 0 denotes an empty tree.
type Meta struct {
	Root         PageNumber
	FreelistPage PageNumber
}

func (m *Meta) serialize(buf []byte) {
	binary.LittleEndian.PutUint64(buf[0:8], uint64(m.Root))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(m.FreelistPage))
}

func (m *Meta) deserialize(buf []byte) {
	m.Root = PageNumber(binary.LittleEndian.Uint64(buf[0:8]))
	m.FreelistPage = PageNumber(binary.LittleEndian.Uint64(buf[8:16]))
}
