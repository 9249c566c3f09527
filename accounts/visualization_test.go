package accounts

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"tessera.dev/node/addr"
)

func TestVisualizationRender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.dat")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	root := testAddress(t, 0x01)
	child1 := testAddress(t, 0x02)
	child2 := testAddress(t, 0x03)
	grand := testAddress(t, 0x04)

	r.Add(root, NewAccount(mustRoles(t, "M..R..")))
	r.Add(child1, NewChildAccount(mustRoles(t, "...RA."), root))
	r.Add(child2, NewChildAccount(mustRoles(t, ".C.R.."), root))
	r.Add(grand, NewChildAccount(mustRoles(t, "...R.."), child1))

	out := NewVisualization(r).Render()

	if !strings.HasPrefix(out, "digraph") {
		t.Fatalf("output is not a digraph:\n%s", out)
	}
	for _, a := range []addr.Address{root, child1, child2, grand} {
		if !strings.Contains(out, addr.Encode(a)) {
			t.Fatalf("output missing vertex for %v:\n%s", a, out)
		}
	}
	for _, label := range []string{"M..R..", "...RA.", ".C.R..", "...R.."} {
		if !strings.Contains(out, fmt.Sprintf("%q", label)) {
			t.Fatalf("output missing role label %q:\n%s", label, out)
		}
	}
	if !strings.Contains(out, "->") {
		t.Fatalf("output has no edges:\n%s", out)
	}
}

func TestVisualizationEmptyRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.dat")
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	out := NewVisualization(r).Render()
	if !strings.HasPrefix(out, "digraph") {
		t.Fatalf("output is not a digraph:\n%s", out)
	}
	if strings.Contains(out, "->") {
		t.Fatalf("empty registry produced edges:\n%s", out)
	}
}
