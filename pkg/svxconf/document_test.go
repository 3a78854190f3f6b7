package svxconf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleConf = `[GLOBAL]
MODULE_PATH=/usr/lib/svxlink
LOGICS=SimplexLogic

[NodeA]
TYPE=Net
HOST=1.2.3.4
TCP_PORT=5200

[Repeater1]
TYPE=Multi
TRANSMITTERS=A,B
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "svxlink.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.conf"))
	if err == nil {
		t.Fatal("Expected error loading a missing file")
	}
}

func TestRemoteNodesFiltersByType(t *testing.T) {
	doc, err := Load(writeSample(t, sampleConf))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	nodes, err := doc.RemoteNodes()
	if err != nil {
		t.Fatalf("RemoteNodes error: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("Expected 1 remote node, got %d", len(nodes))
	}

	node := nodes[0]
	if node.SectionName() != "NodeA" {
		t.Errorf("SectionName = %q, want NodeA", node.SectionName())
	}
	if host, _ := node.Get("HOST"); host != "1.2.3.4" {
		t.Errorf("HOST = %q, want 1.2.3.4", host)
	}
	if port, _ := node.Get("TCP_PORT"); port != "5200" {
		t.Errorf("TCP_PORT = %q, want 5200", port)
	}
}

func TestRemoteNodesExactTypeMatch(t *testing.T) {
	// "net" and "NET" must not qualify; the match is exact, as in
	// svxlink itself.
	conf := `[NodeA]
TYPE=net
HOST=1.2.3.4

[NodeB]
TYPE=NET
HOST=1.2.3.5
`
	doc, err := Load(writeSample(t, conf))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	nodes, err := doc.RemoteNodes()
	if err != nil {
		t.Fatalf("RemoteNodes error: %v", err)
	}
	if len(nodes) != 0 {
		t.Errorf("Expected no remote nodes, got %d", len(nodes))
	}
}

func TestRemoteNodesRejectsForeignOptions(t *testing.T) {
	conf := `[NodeA]
TYPE=Net
HOST=1.2.3.4
FREQUENCY=145.600
`
	doc, err := Load(writeSample(t, conf))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if _, err := doc.RemoteNodes(); err == nil {
		t.Fatal("Expected validation error for option outside the Net allow-list")
	}
}

func TestAddSectionDuplicate(t *testing.T) {
	doc, err := Load(writeSample(t, sampleConf))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	node, err := NewNetNode("NodeA", nil)
	if err != nil {
		t.Fatalf("NewNetNode error: %v", err)
	}

	if err := doc.AddSection(node); err == nil {
		t.Fatal("Expected error adding a duplicate section")
	}
}

func TestAddSectionWriteRoundTrip(t *testing.T) {
	path := writeSample(t, sampleConf)
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	node, err := NewNetNode("NodeB", nil)
	if err != nil {
		t.Fatalf("NewNetNode error: %v", err)
	}
	if err := node.Set("host", "10.1.1.1"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := node.Set("tcp_port", "5210"); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := node.Set("auth_key", "testtest"); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if err := doc.AddSection(node); err != nil {
		t.Fatalf("AddSection error: %v", err)
	}
	if err := doc.Write(path, ModeTruncate); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load error after write: %v", err)
	}

	nodes, err := reloaded.RemoteNodes()
	if err != nil {
		t.Fatalf("RemoteNodes error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("Expected 2 remote nodes after round trip, got %d", len(nodes))
	}

	var nodeB *NetNode
	for _, n := range nodes {
		if n.SectionName() == "NodeB" {
			nodeB = n
		}
	}
	if nodeB == nil {
		t.Fatal("NodeB not found after round trip")
	}

	for _, item := range node.Items() {
		got, ok := nodeB.Get(item.Name)
		if !ok {
			t.Errorf("Option %s missing after round trip", item.Name)
			continue
		}
		if got != item.Value {
			t.Errorf("Option %s = %q after round trip, want %q", item.Name, got, item.Value)
		}
	}
}

func TestWriteAppendMode(t *testing.T) {
	doc, err := Load(writeSample(t, sampleConf))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	target := filepath.Join(t.TempDir(), "out.conf")
	if err := os.WriteFile(target, []byte("# managed by svxconf\n"), 0644); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}

	if err := doc.Write(target, ModeAppend); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}

	out := string(data)
	if !strings.HasPrefix(out, "# managed by svxconf") {
		t.Error("Append mode clobbered existing content")
	}
	if !strings.Contains(out, "[NodeA]") {
		t.Error("Appended output missing NodeA section")
	}
}

func TestSectionNames(t *testing.T) {
	doc, err := Load(writeSample(t, sampleConf))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	want := []string{"GLOBAL", "NodeA", "Repeater1"}
	got := doc.SectionNames()
	if len(got) != len(want) {
		t.Fatalf("SectionNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SectionNames[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
