package btree

import (
	"fmt"
	"slices"

	"github.com/nireo/rapu/pager"
)

// Tree is the insertion/search engine over a pager. It is single-writer and
// single-threaded; callers must serialize all calls against one instance.
type Tree struct {
	pager *pager.Pager
	root  pager.PageNumber
}

// New builds a tree over p, caching the root page number from the pager's
// meta record.
func New(p *pager.Pager) *Tree {
	return &Tree{pager: p, root: p.Root()}
}

// Find returns the value stored under key, or ErrNotFound.
func (t *Tree) Find(key []byte) ([]byte, error) {
	if t.root == 0 {
		return nil, ErrNotFound
	}
	found, idx, node, _, err := t.findPath(key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return node.Items[idx].Value, nil
}

// Put inserts key/value, replacing the value if the key already exists.
func (t *Tree) Put(key, value []byte) error {
	if err := validateItem(key, value, t.pager.Opts.PageSize); err != nil {
		return err
	}
	item := Item{Key: key, Value: value}

	if t.root == 0 {
		node := &Node{Items: []Item{item}, state: nodeDirty}
		if _, err := t.writeNode(node); err != nil {
			return err
		}
		t.root = node.PageNum
		return t.pager.SetRoot(t.root)
	}

	found, idx, node, ancestors, err := t.findPath(key)
	if err != nil {
		return err
	}
	if found {
		node.setItemAt(item, idx)
	} else {
		node.insertItemAt(item, idx)
	}
	if _, err := t.writeNode(node); err != nil {
		return err
	}

	// Re-materialize the ancestor chain from the captured child indices and
	// walk it from the deepest parent toward the root, splitting any child
	// that outgrew its page.
	nodes, err := t.getNodes(ancestors)
	if err != nil {
		return err
	}
	for i := len(nodes) - 2; i >= 0; i-- {
		parent := nodes[i]
		child := nodes[i+1]
		if t.isOverPopulated(child) {
			if err := t.split(parent, child, ancestors[i+1]); err != nil {
				return err
			}
		}
	}

	// Root promotion: the old root becomes the sole child of a fresh root.
	root := nodes[0]
	if t.isOverPopulated(root) {
		newRoot := &Node{Children: []pager.PageNumber{root.PageNum}, state: nodeDirty}
		if err := t.split(newRoot, root, 0); err != nil {
			return err
		}
		t.root = newRoot.PageNum
		return t.pager.SetRoot(t.root)
	}
	return nil
}

// findPath descends from the root by in-node scan. It returns whether the
// key was found, the item index (insertion position on a miss), the final
// node, and the child indices chosen at each level. By convention the first
// ancestor index is 0, standing for the root itself.
func (t *Tree) findPath(key []byte) (bool, int, *Node, []int, error) {
	ancestors := []int{0}
	node, err := t.getNode(t.root)
	if err != nil {
		return false, 0, nil, nil, err
	}
	for {
		found, idx := node.findKeyInNode(key)
		if found || node.isLeaf() {
			return found, idx, node, ancestors, nil
		}
		ancestors = append(ancestors, idx)
		node, err = t.getNode(node.Children[idx])
		if err != nil {
			return false, 0, nil, nil, err
		}
	}
}

// getNodes re-fetches the node chain described by ancestor indices, root
// first. One page read per level.
func (t *Tree) getNodes(indexes []int) ([]*Node, error) {
	root, err := t.getNode(t.root)
	if err != nil {
		return nil, err
	}
	nodes := []*Node{root}
	child := root
	for i := 1; i < len(indexes); i++ {
		child, err = t.getNode(child.Children[indexes[i]])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, child)
	}
	return nodes, nil
}

// split relocates the right half of child into a new sibling and promotes
// the middle item into parent at childIdx. For internal children the left
// half keeps children [0..splitIdx] and the sibling takes the rest.
func (t *Tree) split(parent, child *Node, childIdx int) error {
	splitIdx, err := t.splitIndex(child)
	if err != nil {
		return err
	}
	middle := child.Items[splitIdx]

	var sibling *Node
	if child.isLeaf() {
		sibling = &Node{
			Items: append([]Item(nil), child.Items[splitIdx+1:]...),
			state: nodeDirty,
		}
		child.Items = child.Items[:splitIdx]
	} else {
		sibling = &Node{
			Items:    append([]Item(nil), child.Items[splitIdx+1:]...),
			Children: append([]pager.PageNumber(nil), child.Children[splitIdx+1:]...),
			state:    nodeDirty,
		}
		child.Items = child.Items[:splitIdx]
		child.Children = child.Children[:splitIdx+1]
	}
	child.markDirty()

	if _, err := t.writeNode(sibling); err != nil {
		return err
	}

	parent.insertItemAt(middle, childIdx)
	parent.Children = slices.Insert(parent.Children, childIdx+1, sibling.PageNum)

	if _, err := t.writeNode(parent); err != nil {
		return err
	}
	if _, err := t.writeNode(child); err != nil {
		return err
	}
	return nil
}

// splitIndex finds the smallest item index whose running prefix size
// strictly exceeds the minimum threshold, leaving at least one item behind,
// and returns the position after it.
func (t *Tree) splitIndex(n *Node) (int, error) {
	size := nodeHeaderSize
	for i := 0; i < len(n.Items)-1; i++ {
		size += n.elementSize(i)
		if float64(size) > t.pager.Opts.MinThreshold() {
			return i + 1, nil
		}
	}
	return 0, ErrNotSplittable
}

func (t *Tree) isOverPopulated(n *Node) bool {
	return float64(n.size()) > t.pager.Opts.MaxThreshold()
}

func (t *Tree) isUnderPopulated(n *Node) bool {
	return float64(n.size()) < t.pager.Opts.MinThreshold()
}

// getNode reads and decodes the node stored at num.
func (t *Tree) getNode(num pager.PageNumber) (*Node, error) {
	pg, err := t.pager.ReadPage(num)
	if err != nil {
		return nil, err
	}
	node := &Node{}
	if err := node.deserialize(pg.Data); err != nil {
		return nil, fmt.Errorf("page %d: %w", num, err)
	}
	node.PageNum = num
	return node, nil
}

// writeNode encodes the node into a fresh page buffer and writes it,
// assigning a page number first if the node has none.
func (t *Tree) writeNode(n *Node) (pager.PageNumber, error) {
	if n.PageNum == 0 {
		n.PageNum = t.pager.NextPage()
	}
	pg := t.pager.AllocateEmptyPage()
	pg.Num = n.PageNum
	if err := n.serialize(pg.Data); err != nil {
		return 0, err
	}
	if err := t.pager.WritePage(pg); err != nil {
		return 0, err
	}
	n.state = nodeWritten
	return n.PageNum, nil
}

// deleteNode recycles a node's page through the freelist.
func (t *Tree) deleteNode(n *Node) {
	t.pager.ReleasePage(n.PageNum)
}

func validateItem(key, value []byte, pageSize int) error {
	if len(key) > maxKeyLen || len(value) > maxValueLen {
		return ErrItemTooLarge
	}
	if len(key)+len(value)+pageNumSize > pageSize/4 {
		return ErrItemTooLarge
	}
	return nil
}
