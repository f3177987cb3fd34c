package book

// TreeNode is the structural view of a model: ids and titles without
// content. Binders carry a Contents slice; leaves do not.
type TreeNode struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Contents []*TreeNode `json:"contents,omitempty"`
}

// ModelToTree reduces a model to its tree of ids and titles. Translucent
// binders appear under TranslucentBinderID, and title overrides recorded on
// a parent binder shadow the child's own title.
func ModelToTree(node Node) *TreeNode {
	return modelToTree(node, "")
}

func modelToTree(node Node, title string) *TreeNode {
	if title == "" {
		title = node.Metadata().Title
	}
	tree := &TreeNode{Title: title}
	switch n := node.(type) {
	case *Binder:
		tree.ID = n.IdentHash()
		tree.Contents = childTrees(&n.TranslucentBinder)
	case *TranslucentBinder:
		tree.ID = TranslucentBinderID
		tree.Contents = childTrees(n)
	default:
		tree.ID = node.IdentHash()
	}
	return tree
}

func childTrees(b *TranslucentBinder) []*TreeNode {
	trees := make([]*TreeNode, 0, len(b.nodes))
	for _, child := range b.nodes {
		trees = append(trees, modelToTree(child, b.overrideFor(child)))
	}
	return trees
}

// FlattenModel returns the node and all of its descendants in depth-first
// order, parents before children.
func FlattenModel(node Node) []Node {
	out := []Node{node}
	if c, ok := node.(container); ok {
		for _, child := range c.Nodes() {
			out = append(out, FlattenModel(child)...)
		}
	}
	return out
}

// FlattenToDocuments returns only the documents under the node, in reading
// order. Composite documents contribute their document view.
func FlattenToDocuments(node Node) []*Document {
	var out []*Document
	for _, n := range FlattenModel(node) {
		switch m := n.(type) {
		case *CompositeDocument:
			out = append(out, &m.Document)
		case *Document:
			out = append(out, m)
		}
	}
	return out
}
