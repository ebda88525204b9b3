package pager

import "encoding/binary"

// Freelist hands out page numbers: released pages are recycled LIFO before
// the max-page watermark is advanced. Page 0 stays reserved for the meta
// record, so the first allocation is always page 1.
type Freelist struct {
	maxPage       PageNumber
	releasedPages []PageNumber
}

func newFreelist() *Freelist {
	return &Freelist{
		maxPage:       metaPageNum,
		releasedPages: []PageNumber{},
	}
}

// NextPage pops the most recently released page, or advances the watermark
// when none are waiting. Never returns 0.
func (f *Freelist) NextPage() PageNumber {
	if n := len(f.releasedPages); n > 0 {
		pg := f.releasedPages[n-1]
		f.releasedPages = f.releasedPages[:n-1]
		return pg
	}
	f.maxPage++
	return f.maxPage
}

// ReleasePage marks the page as reusable.
func (f *Freelist) ReleasePage(num PageNumber) {
	f.releasedPages = append(f.releasedPages, num)
}

// On-disk layout: max_page u16 | count u16 | released page numbers u64 each.
// The 16-bit watermark caps the file at 65535 pages.
func (f *Freelist) serialize(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], uint16(f.maxPage))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(len(f.releasedPages)))
	pos := 4
	for _, pg := range f.releasedPages {
		binary.LittleEndian.PutUint64(buf[pos:pos+pageNumSize], uint64(pg))
		pos += pageNumSize
	}
}

func (f *Freelist) deserialize(buf []byte) {
	f.maxPage = PageNumber(binary.LittleEndian.Uint16(buf[0:2]))
	count := int(binary.LittleEndian.Uint16(buf[2:4]))
	pos := 4
	f.releasedPages = make([]PageNumber, 0, count)
	for i := 0; i < count; i++ {
		f.releasedPages = append(f.releasedPages, PageNumber(binary.LittleEndian.Uint64(buf[pos:pos+pageNumSize])))
		pos += pageNumSize
	}
}
