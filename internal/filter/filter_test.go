package filter

import (
	"strings"
	"testing"
)

const batchJSON = `[
  {"text":"今天很开心","sentiment":"积极","score":0.87},
  {"text":"服务太差了","sentiment":"消极","score":0.12}
]`

func TestApply_EmptyQueryPassesThrough(t *testing.T) {
	out, err := Apply(batchJSON, "")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != batchJSON {
		t.Error("empty query modified the body")
	}
}

func TestApply_SelectsField(t *testing.T) {
	out, err := Apply(batchJSON, "[0].sentiment")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "积极" {
		t.Errorf("out = %q, want bare string 积极", out)
	}
}

func TestApply_Projection(t *testing.T) {
	out, err := Apply(batchJSON, "[].text")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(out, "今天很开心") || !strings.Contains(out, "服务太差了") {
		t.Errorf("out = %s", out)
	}
}

func TestApply_FilterExpression(t *testing.T) {
	out, err := Apply(batchJSON, "[?score > `0.5`].text | [0]")
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if out != "今天很开心" {
		t.Errorf("out = %q", out)
	}
}

func TestApply_InvalidJSON(t *testing.T) {
	if _, err := Apply("not json", "[0]"); err == nil {
		t.Error("expected error for invalid JSON body")
	}
}

func TestApply_InvalidExpression(t *testing.T) {
	if _, err := Apply(batchJSON, "[?broken"); err == nil {
		t.Error("expected error for invalid expression")
	}
}
