package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const treeInput = `<p class="x" on={f}>hi {n}<br/></p>`

func TestFormatTree_Text(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	if err := FormatTree(ctx, &buf, ParseMarkup(ctx, treeInput), FormatText, 2); err != nil {
		t.Fatalf("FormatTree: %v", err)
	}

	want := `element p @1:1
  attr class="x"
  attr on={f}
  text "hi {n}" @1:21
  element br self-closing @1:27
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("text tree mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatTree_JSON(t *testing.T) {
	ctx := context.Background()

	for _, indent := range []int{0, 2} {
		var buf bytes.Buffer
		if err := FormatTree(ctx, &buf, ParseMarkup(ctx, treeInput), FormatJSON, indent); err != nil {
			t.Fatalf("FormatTree: %v", err)
		}

		var got []TreeNode
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		if diff := cmp.Diff(Tree(ParseMarkup(ctx, treeInput)), got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("JSON tree mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestFormatTree_YAML(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	if err := FormatTree(ctx, &buf, ParseMarkup(ctx, treeInput), FormatYAML, 2); err != nil {
		t.Fatalf("FormatTree: %v", err)
	}

	var got []TreeNode
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}

	tree := got[0]
	if tree.Tag != "p" || len(tree.Children) != 2 || tree.Children[0].Fragments[1].Value != "n" {
		t.Errorf("unexpected YAML tree: %+v", got)
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range slices.Collect(Formats()) {
		f, err := ParseFormat(name)
		if err != nil || f.String() != name {
			t.Errorf("ParseFormat(%q): got %v, %v", name, f, err)
		}
	}

	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("expected case-insensitive match, got %v, %v", f, err)
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}

	var buf bytes.Buffer
	if err := FormatTree(context.Background(), &buf, nil, Format(9), 0); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}
