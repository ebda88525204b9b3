package pager

import (
	"fmt"
	"io"
	"os"
)

// PageNumber indexes a page within the file; 0 is reserved for Meta.
type PageNumber uint64

// Page is one fixed-size slot of the file held in memory. The pager is
// agnostic to its content; the role (meta, freelist, node) belongs to the
// caller.
type Page struct {
	Num  PageNumber
	Data []byte
}

// Pager performs fixed-size page I/O on a single file and owns the file
// handle exclusively. It also carries the meta record and the free-page
// allocator, both persisted inside the same file.
type Pager struct {
	Opts Options

	file     *os.File
	meta     *Meta
	freelist *Freelist
}

// Open opens or creates the database file. An existing file has its meta
// record read from page 0 and its freelist from the page the meta names; a
// fresh file gets both initialized and persisted before Open returns.
func Open(path string, opts Options) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	p := &Pager{Opts: opts, file: f}

	if fi.Size() == 0 {
		p.meta = &Meta{}
		p.freelist = newFreelist()
		p.meta.FreelistPage = p.freelist.NextPage()
		if err := p.WriteFreelist(); err != nil {
			f.Close()
			return nil, err
		}
		if err := p.WriteMeta(); err != nil {
			f.Close()
			return nil, err
		}
		return p, nil
	}

	p.meta = &Meta{}
	metaPage, err := p.ReadPage(metaPageNum)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.meta.deserialize(metaPage.Data)

	p.freelist = newFreelist()
	flPage, err := p.ReadPage(p.meta.FreelistPage)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.freelist.deserialize(flPage.Data)

	return p, nil
}

// AllocateEmptyPage returns a zero-filled page buffer with no page number
// assigned yet.
func (p *Pager) AllocateEmptyPage() *Page {
	return &Page{Data: make([]byte, p.Opts.PageSize)}
}

// ReadPage reads page num into a freshly allocated buffer. A short read is
// an error.
func (p *Pager) ReadPage(num PageNumber) (*Page, error) {
	pg := p.AllocateEmptyPage()
	pg.Num = num

	off := int64(num) * int64(p.Opts.PageSize)
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek page %d: %w", num, err)
	}
	if _, err := io.ReadFull(p.file, pg.Data); err != nil {
		return nil, fmt.Errorf("read page %d: %w", num, err)
	}
	return pg, nil
}

// WritePage writes the page buffer to its slot in the file.
func (p *Pager) WritePage(pg *Page) error {
	off := int64(pg.Num) * int64(p.Opts.PageSize)
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seek page %d: %w", pg.Num, err)
	}
	if _, err := p.file.Write(pg.Data); err != nil {
		return fmt.Errorf("write page %d: %w", pg.Num, err)
	}
	return nil
}

// NextPage hands out a page number from the freelist.
func (p *Pager) NextPage() PageNumber {
	return p.freelist.NextPage()
}

// ReleasePage returns a page number to the freelist for reuse.
func (p *Pager) ReleasePage(num PageNumber) {
	p.freelist.ReleasePage(num)
}

// Root returns the tree root recorded in the meta page; 0 means the tree is
// empty.
func (p *Pager) Root() PageNumber {
	return p.meta.Root
}

// SetRoot records a new tree root and rewrites the meta page.
func (p *Pager) SetRoot(num PageNumber) error {
	p.meta.Root = num
	return p.WriteMeta()
}

// WriteMeta serializes the meta record into page 0.
func (p *Pager) WriteMeta() error {
	pg := p.AllocateEmptyPage()
	pg.Num = metaPageNum
	p.meta.serialize(pg.Data)
	return p.WritePage(pg)
}

// WriteFreelist serializes the freelist into its page.
func (p *Pager) WriteFreelist() error {
	pg := p.AllocateEmptyPage()
	pg.Num = p.meta.FreelistPage
	p.freelist.serialize(pg.Data)
	return p.WritePage(pg)
}

// Close persists the freelist and meta record, syncs, and closes the file.
func (p *Pager) Close() error {
	if err := p.WriteFreelist(); err != nil {
		return err
	}
	if err := p.WriteMeta(); err != nil {
		return err
	}
	if err := p.file.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return p.file.Close()
}
