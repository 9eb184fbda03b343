package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hdbagent/internal/model"
)

func TestWriterPromptAndOutput(t *testing.T) {
	gen := &stubGenerator{output: "  Here is the summary.\n"}
	writer := NewWriter(gen, 256)

	data := model.LowSupplyResult{
		Tool:   model.ToolLowSupply,
		Cutoff: "2015-08-01",
		Items:  []model.SegmentCount{{Town: "BISHAN", FlatType: "4 ROOM", N: 1}},
	}
	answer, err := writer.Write(context.Background(), data, "where is supply low?")
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if answer != "Here is the summary." {
		t.Errorf("Write() = %q, want trimmed backend output", answer)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("expected one backend call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, fragment := range []string{`"tool":"low_supply"`, `"BISHAN"`, "User: where is supply low?"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestWriterBackendFailure(t *testing.T) {
	writer := NewWriter(&stubGenerator{err: errors.New("timeout")}, 256)

	if _, err := writer.Write(context.Background(), model.LowSupplyResult{Tool: model.ToolLowSupply}, "q"); err == nil {
		t.Error("Write() must propagate backend failures")
	}
}
