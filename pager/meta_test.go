package pager

import "testing"

func TestMetaSerializeRoundTrip(t *testing.T) {
	m := &Meta{Root: 42, FreelistPage: 1}

	buf := make([]byte, DefaultPageSize)
	m.serialize(buf)

	loaded := &Meta{}
	loaded.deserialize(buf)

	if loaded.Root != m.Root {
		t.Errorf("Root = %d; want %d", loaded.Root, m.Root)
	}
	if loaded.FreelistPage != m.FreelistPage {
		t.Errorf("FreelistPage = %d; want %d", loaded.FreelistPage, m.FreelistPage)
	}
}

func TestMetaZeroValue(t *testing.T) {
	buf := make([]byte, DefaultPageSize)
	loaded := &Meta{Root: 9, FreelistPage: 9}
	loaded.deserialize(buf)

	if loaded.Root != 0 || loaded.FreelistPage != 0 {
		t.Errorf("decoded zero page = %+v; want zeroed meta", loaded)
	}
}

func TestOptionsThresholds(t *testing.T) {
	o := DefaultOptions()
	if got := o.MinThreshold(); got != 0.5*4096 {
		t.Errorf("MinThreshold() = %v; want %v", got, 0.5*4096)
	}
	if got := o.MaxThreshold(); got != 0.95*4096 {
		t.Errorf("MaxThreshold() = %v; want %v", got, 0.95*4096)
	}
}
