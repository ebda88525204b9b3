package pager

import (
	"reflect"
	"testing"
)

func TestFreelistNextPage(t *testing.T) {
	f := newFreelist()
	for want := PageNumber(1); want <= 3; want++ {
		if got := f.NextPage(); got != want {
			t.Errorf("NextPage() = %d; want %d", got, want)
		}
	}
}

// Released pages are reused LIFO before the watermark advances.
func TestFreelistReleaseLIFO(t *testing.T) {
	f := newFreelist()
	for i := 0; i < 3; i++ {
		f.NextPage()
	}
	f.ReleasePage(2)
	f.ReleasePage(3)

	want := []PageNumber{3, 2, 4}
	for _, w := range want {
		if got := f.NextPage(); got != w {
			t.Errorf("NextPage() = %d; want %d", got, w)
		}
	}
}

func TestFreelistNeverReturnsZero(t *testing.T) {
	f := newFreelist()
	for i := 0; i < 100; i++ {
		if got := f.NextPage(); got == 0 {
			t.Fatalf("NextPage() returned 0 on call %d", i)
		}
	}
}

func TestFreelistSerializeRoundTrip(t *testing.T) {
	f := newFreelist()
	for i := 0; i < 5; i++ {
		f.NextPage()
	}
	f.ReleasePage(2)
	f.ReleasePage(4)

	buf := make([]byte, DefaultPageSize)
	f.serialize(buf)

	loaded := newFreelist()
	loaded.deserialize(buf)

	if loaded.maxPage != f.maxPage {
		t.Errorf("maxPage = %d; want %d", loaded.maxPage, f.maxPage)
	}
	if !reflect.DeepEqual(loaded.releasedPages, f.releasedPages) {
		t.Errorf("releasedPages = %v; want %v", loaded.releasedPages, f.releasedPages)
	}
}

func TestFreelistSerializeEmpty(t *testing.T) {
	f := newFreelist()
	buf := make([]byte, DefaultPageSize)
	f.serialize(buf)

	loaded := newFreelist()
	loaded.deserialize(buf)
	if loaded.maxPage != 0 {
		t.Errorf("maxPage = %d; want 0", loaded.maxPage)
	}
	if len(loaded.releasedPages) != 0 {
		t.Errorf("releasedPages = %v; want empty", loaded.releasedPages)
	}
}
