package accounts

import (
	"github.com/emicklei/dot"

	"tessera.dev/node/addr"
)

// Visualization renders a registry's authority tree as a directed graph
// in dot text form, one vertex per account reachable from the root,
// labelled with the account's role string.
type Visualization struct {
	db *Registry
}

// NewVisualization returns a visualization over db.
func NewVisualization(db *Registry) *Visualization {
	return &Visualization{db: db}
}

// Graph builds the directed graph rooted at the registry's root address.
func (v *Visualization) Graph() *dot.Graph {
	g := dot.NewGraph(dot.Directed)

	rootAddress := v.db.RootAddress()
	if !rootAddress.IsValid() {
		return g
	}
	rootNode := v.vertex(g, rootAddress)
	v.addChildren(g, rootNode, v.db.Children(rootAddress))
	return g
}

// Render returns the dot text of the authority tree.
func (v *Visualization) Render() string {
	return v.Graph().String()
}

func (v *Visualization) vertex(g *dot.Graph, address addr.Address) dot.Node {
	encoded := addr.Encode(address)
	node := g.Node(encoded)
	node.Attr("address", encoded)
	roles := "......"
	if acct, ok := v.db.Get(address); ok {
		roles = acct.Roles.String()
	}
	node.Attr("label", roles)
	return node
}

func (v *Visualization) addChildren(g *dot.Graph, parent dot.Node, children []addr.Address) {
	for _, child := range children {
		childNode := v.vertex(g, child)
		g.Edge(parent, childNode)
		v.addChildren(g, childNode, v.db.Children(child))
	}
}
