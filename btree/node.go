package btree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/nireo/rapu/pager"
)

const (
	// is_leaf (1 byte) + item count (2 bytes)
	nodeHeaderSize = 3
	pageNumSize    = 8

	// Single-byte length prefixes on disk.
	maxKeyLen   = 255
	maxValueLen = 255
)

// Item is a single key/value pair stored in a node. Keys are compared
// lexicographically as unsigned bytes.
type Item struct {
	Key   []byte
	Value []byte
}

type nodeState uint8

const (
	nodeClean nodeState = iota
	nodeDirty
	nodeWritten
)

// Node is a B-tree node materialized from a page. It is a value object:
// decoded on demand, mutated in memory, encoded back into a page buffer.
// Parent/child links are page numbers, never in-memory pointers. A PageNum
// of 0 means the node has not been assigned a page yet.
type Node struct {
	PageNum  pager.PageNumber
	Items    []Item
	Children []pager.PageNumber

	state nodeState
}

func (n *Node) isLeaf() bool {
	return len(n.Children) == 0
}

func (n *Node) markDirty() {
	n.state = nodeDirty
}

// findKeyInNode scans the sorted items for key. It returns (true, i) on an
// exact match, otherwise (false, i) where i is the first position whose key
// is greater than the probe (len(items) if every key is smaller).
func (n *Node) findKeyInNode(key []byte) (bool, int) {
	for i := range n.Items {
		switch bytes.Compare(n.Items[i].Key, key) {
		case 0:
			return true, i
		case 1:
			return false, i
		}
	}
	return false, len(n.Items)
}

func (n *Node) insertItemAt(item Item, idx int) {
	n.Items = slices.Insert(n.Items, idx, item)
	n.markDirty()
}

func (n *Node) setItemAt(item Item, idx int) {
	n.Items[idx] = item
	n.markDirty()
}

// elementSize is the estimator cost of item i: key + value + one page number.
func (n *Node) elementSize(i int) int {
	return len(n.Items[i].Key) + len(n.Items[i].Value) + pageNumSize
}

// size estimates the encoded size of the node: header + every element + one
// extra child pointer. The extra pointer makes the estimate conservative for
// leaves; it is only ever compared against fill thresholds.
func (n *Node) size() int {
	sz := nodeHeaderSize
	for i := range n.Items {
		sz += n.elementSize(i)
	}
	return sz + pageNumSize
}

// serialize packs the node into buf, which must be a full page. The header
// and offset array grow from the left, key/value blobs from the right; each
// blob reads klen | key | vlen | value at its recorded offset.
func (n *Node) serialize(buf []byte) error {
	leftPos := 0
	rightPos := len(buf)

	isLeaf := n.isLeaf()
	if isLeaf {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
	binary.LittleEndian.PutUint16(buf[1:3], uint16(len(n.Items)))
	leftPos = nodeHeaderSize

	for i := range n.Items {
		item := n.Items[i]
		klen := len(item.Key)
		vlen := len(item.Value)

		leftNeed := 2
		if !isLeaf {
			leftNeed += pageNumSize
		}
		if leftPos+leftNeed+klen+vlen+2 > rightPos {
			return fmt.Errorf("node with %d items does not fit a %d-byte page", len(n.Items), len(buf))
		}

		if !isLeaf {
			binary.LittleEndian.PutUint64(buf[leftPos:], uint64(n.Children[i]))
			leftPos += pageNumSize
		}

		offset := rightPos - klen - vlen - 2
		binary.LittleEndian.PutUint16(buf[leftPos:], uint16(offset))
		leftPos += 2

		rightPos -= vlen
		copy(buf[rightPos:], item.Value)
		rightPos--
		buf[rightPos] = byte(vlen)
		rightPos -= klen
		copy(buf[rightPos:], item.Key)
		rightPos--
		buf[rightPos] = byte(klen)
	}

	if !isLeaf {
		if leftPos+pageNumSize > rightPos {
			return fmt.Errorf("node with %d items does not fit a %d-byte page", len(n.Items), len(buf))
		}
		binary.LittleEndian.PutUint64(buf[leftPos:], uint64(n.Children[len(n.Items)]))
	}
	return nil
}

// deserialize populates the node from a page buffer, validating every offset
// and length against the page bounds.
func (n *Node) deserialize(buf []byte) error {
	if len(buf) < nodeHeaderSize {
		return ErrMalformedPage
	}
	if buf[0] > 1 {
		return ErrMalformedPage
	}
	isLeaf := buf[0] == 1
	itemCount := int(binary.LittleEndian.Uint16(buf[1:3]))
	leftPos := nodeHeaderSize

	for i := 0; i < itemCount; i++ {
		if !isLeaf {
			if leftPos+pageNumSize > len(buf) {
				return ErrMalformedPage
			}
			n.Children = append(n.Children, pager.PageNumber(binary.LittleEndian.Uint64(buf[leftPos:])))
			leftPos += pageNumSize
		}

		if leftPos+2 > len(buf) {
			return ErrMalformedPage
		}
		offset := int(binary.LittleEndian.Uint16(buf[leftPos:]))
		leftPos += 2

		if offset >= len(buf) {
			return ErrMalformedPage
		}
		klen := int(buf[offset])
		offset++
		if offset+klen > len(buf) {
			return ErrMalformedPage
		}
		key := make([]byte, klen)
		copy(key, buf[offset:offset+klen])
		offset += klen

		if offset >= len(buf) {
			return ErrMalformedPage
		}
		vlen := int(buf[offset])
		offset++
		if offset+vlen > len(buf) {
			return ErrMalformedPage
		}
		value := make([]byte, vlen)
		copy(value, buf[offset:offset+vlen])

		n.Items = append(n.Items, Item{Key: key, Value: value})
	}

	if !isLeaf {
		if leftPos+pageNumSize > len(buf) {
			return ErrMalformedPage
		}
		n.Children = append(n.Children, pager.PageNumber(binary.LittleEndian.Uint64(buf[leftPos:])))
	}

	n.state = nodeClean
	return nil
}
