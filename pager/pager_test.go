package pager

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestPager(t *testing.T) (*Pager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	p, err := Open(path, DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return p, path
}

// A fresh file gets a meta page and a freelist page written up front.
func TestOpenFreshFile(t *testing.T) {
	p, path := newTestPager(t)
	defer p.Close()

	if p.Root() != 0 {
		t.Errorf("Root() = %d; want 0 for a fresh file", p.Root())
	}
	if p.meta.FreelistPage != 1 {
		t.Errorf("FreelistPage = %d; want 1", p.meta.FreelistPage)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	want := int64(2 * DefaultPageSize)
	if fi.Size() != want {
		t.Errorf("file size = %d; want %d", fi.Size(), want)
	}
}

func TestWriteReadPageRoundTrip(t *testing.T) {
	p, _ := newTestPager(t)
	defer p.Close()

	pg := p.AllocateEmptyPage()
	pg.Num = p.NextPage()
	pg.Data[0] = 0xAB
	pg.Data[DefaultPageSize-1] = 0xCD
	if err := p.WritePage(pg); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	got, err := p.ReadPage(pg.Num)
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if got.Data[0] != 0xAB || got.Data[DefaultPageSize-1] != 0xCD {
		t.Errorf("unexpected data: first=0x%X last=0x%X", got.Data[0], got.Data[DefaultPageSize-1])
	}
}

// Reading past the end of the file is a short read and must fail.
func TestReadPageShortRead(t *testing.T) {
	p, _ := newTestPager(t)
	defer p.Close()

	if _, err := p.ReadPage(100); err == nil {
		t.Errorf("expected error reading unwritten page")
	}
}

func TestAllocateEmptyPage(t *testing.T) {
	p, _ := newTestPager(t)
	defer p.Close()

	pg := p.AllocateEmptyPage()
	if pg.Num != 0 {
		t.Errorf("Num = %d; want 0", pg.Num)
	}
	if len(pg.Data) != DefaultPageSize {
		t.Fatalf("len(Data) = %d; want %d", len(pg.Data), DefaultPageSize)
	}
	for i, b := range pg.Data {
		if b != 0 {
			t.Errorf("Data[%d] = 0x%X; want 0", i, b)
			break
		}
	}
}

// SetRoot rewrites the meta page; the root must survive a reopen.
func TestSetRootPersists(t *testing.T) {
	p, path := newTestPager(t)

	if err := p.SetRoot(7); err != nil {
		t.Fatalf("SetRoot: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path, DefaultOptions())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()
	if p2.Root() != 7 {
		t.Errorf("Root() after reopen = %d; want 7", p2.Root())
	}
}

// Close persists the freelist: released pages are still reusable after a
// reopen, and the watermark does not reset.
func TestFreelistPersists(t *testing.T) {
	p, path := newTestPager(t)

	// Pages 2, 3, 4 (1 went to the freelist itself).
	for i := 0; i < 3; i++ {
		p.NextPage()
	}
	p.ReleasePage(3)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path, DefaultOptions())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()

	if got := p2.NextPage(); got != 3 {
		t.Errorf("NextPage() = %d; want released page 3", got)
	}
	if got := p2.NextPage(); got != 5 {
		t.Errorf("NextPage() = %d; want watermark page 5", got)
	}
}

func TestOpenCustomPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.db")
	opts := Options{PageSize: 512, MinFillPercent: 0.5, MaxFillPercent: 0.95}

	p, err := Open(path, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if fi.Size() != 2*512 {
		t.Errorf("file size = %d; want %d", fi.Size(), 2*512)
	}
}
