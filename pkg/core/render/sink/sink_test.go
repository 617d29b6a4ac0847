package sink

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/partree/pkg/core/levels"
	"github.com/matzehuels/partree/pkg/core/tree"
)

func mustBuild(t *testing.T, expr string) *tree.Node {
	t.Helper()
	root, err := tree.Build(expr)
	if err != nil {
		t.Fatalf("Build(%q) error: %v", expr, err)
	}
	return root
}

func TestRenderText(t *testing.T) {
	g := levels.Layout(mustBuild(t, "2+3"))

	if got, want := RenderText(g), "      + \n 2  3 "; got != want {
		t.Errorf("RenderText() = %q, want %q", got, want)
	}
	if got, want := RenderText(g, WithCellWidth(1)), " +\n23"; got != want {
		t.Errorf("RenderText(width 1) = %q, want %q", got, want)
	}
	if got := RenderText(levels.Grid{}); got != levels.EmptyMessage {
		t.Errorf("RenderText(empty) = %q, want %q", got, levels.EmptyMessage)
	}
}

func TestRenderTable(t *testing.T) {
	g := levels.Layout(mustBuild(t, "1+2*3+4"))

	tests := []struct {
		name  string
		opts  []TableOption
		wants []string
	}{
		{"plain", []TableOption{WithPlain()}, []string{"╭", "╰", "+", "*", "1", "4"}},
		{"depth", []TableOption{WithPlain(), WithDepthColumn(), WithColumnHeaders()}, []string{"depth", "2"}},
		{"styled", nil, []string{"╭", "*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderTable(g, tt.opts...)
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("RenderTable() missing %q in:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderTableEmpty(t *testing.T) {
	if got := RenderTable(levels.Grid{}); got != levels.EmptyMessage {
		t.Errorf("RenderTable(empty) = %q, want %q", got, levels.EmptyMessage)
	}
}

func TestRenderJSON(t *testing.T) {
	root := mustBuild(t, "1+2+3")
	data, err := RenderJSON(root, WithJSONExpression("1+2+3"), WithJSONValue("6"), WithJSONLines(3))
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var doc struct {
		Expression string      `json:"expression"`
		Levels     [][]*string `json:"levels"`
		Grid       [][]string  `json:"grid"`
		Width      int         `json:"width"`
		Depth      int         `json:"depth"`
		Lines      []string    `json:"lines"`
		Value      string      `json:"value"`
		Stats      struct {
			Nodes     int `json:"nodes"`
			Leaves    int `json:"leaves"`
			Operators int `json:"operators"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	if doc.Expression != "1+2+3" || doc.Value != "6" {
		t.Errorf("expression/value = %q/%q", doc.Expression, doc.Value)
	}
	if doc.Width != 4 || doc.Depth != 2 {
		t.Errorf("width/depth = %d/%d, want 4/2", doc.Width, doc.Depth)
	}
	if len(doc.Levels) != 3 || len(doc.Levels[2]) != 4 {
		t.Fatalf("levels shape = %v", doc.Levels)
	}
	if doc.Levels[2][2] != nil {
		t.Errorf("placeholder slot = %q, want null", *doc.Levels[2][2])
	}
	if got := *doc.Levels[1][1]; got != "3" {
		t.Errorf("levels[1][1] = %q, want 3", got)
	}
	if len(doc.Lines) != len(doc.Grid) {
		t.Errorf("got %d lines for %d grid rows", len(doc.Lines), len(doc.Grid))
	}
	if doc.Stats.Nodes != 5 || doc.Stats.Leaves != 3 || doc.Stats.Operators != 2 {
		t.Errorf("stats = %+v", doc.Stats)
	}
}

func TestRenderJSONNil(t *testing.T) {
	data, err := RenderJSON(nil)
	if err != nil {
		t.Fatalf("RenderJSON(nil) error: %v", err)
	}
	if !strings.Contains(string(data), `"expression_tree":null`) {
		t.Errorf("RenderJSON(nil) = %s, want null tree", data)
	}
	if !strings.Contains(string(data), `"grid":[]`) {
		t.Errorf("RenderJSON(nil) = %s, want empty grid", data)
	}
}

func TestParseJSONTree(t *testing.T) {
	for _, expr := range []string{"7", "a*b", "1+2-3*4/5", "x+y+z+w+v+u"} {
		root := mustBuild(t, expr)
		data, err := RenderJSON(root, WithJSONIndent())
		if err != nil {
			t.Fatalf("RenderJSON(%q) error: %v", expr, err)
		}
		got, err := ParseJSONTree(data)
		if err != nil {
			t.Fatalf("ParseJSONTree(%q) error: %v", expr, err)
		}
		if got.String() != root.String() {
			t.Errorf("ParseJSONTree(%q) = %s, want %s", expr, got, root)
		}
	}

	if _, err := ParseJSONTree([]byte("{")); err == nil {
		t.Error("ParseJSONTree(invalid) expected error")
	}
}

// chainJSON returns a document whose tree is a left-leaning chain of depth d.
func chainJSON(d int) []byte {
	doc := `{"data": "x"}`
	for i := 0; i < d; i++ {
		doc = `{"data": "+", "left": ` + doc + `, "right": {"data": "1"}}`
	}
	return []byte(`{"expression_tree": ` + doc + `}`)
}

func TestParseJSONTree_Depth(t *testing.T) {
	tests := []struct {
		depth   int
		wantErr bool
	}{
		{0, false},
		{levels.MaxDepth, false},
		{levels.MaxDepth + 1, true},
		{70, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.depth), func(t *testing.T) {
			root, err := ParseJSONTree(chainJSON(tt.depth))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseJSONTree() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tree.Depth(root) != tt.depth {
				t.Errorf("depth = %d, want %d", tree.Depth(root), tt.depth)
			}
		})
	}
}
