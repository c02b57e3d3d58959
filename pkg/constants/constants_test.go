package constants

import "testing"

func TestWorkflowsDir(t *testing.T) {
	if WorkflowsDir != ".github/workflows" {
		t.Errorf("WorkflowsDir = %q, want %q", WorkflowsDir, ".github/workflows")
	}
}

func TestActionFileNames(t *testing.T) {
	want := map[string]bool{"action.yml": true, "action.yaml": true}
	if len(ActionFileNames) != len(want) {
		t.Fatalf("ActionFileNames = %v, want %d entries", ActionFileNames, len(want))
	}
	for _, name := range ActionFileNames {
		if !want[name] {
			t.Errorf("unexpected action file name %q", name)
		}
	}
}

func TestPureExpressionFunctions(t *testing.T) {
	want := []string{"tojson", "format", "startswith", "endswith"}
	if len(PureExpressionFunctions) != len(want) {
		t.Fatalf("PureExpressionFunctions = %v, want %v", PureExpressionFunctions, want)
	}
	for i, fn := range want {
		if PureExpressionFunctions[i] != fn {
			t.Errorf("PureExpressionFunctions[%d] = %q, want %q", i, PureExpressionFunctions[i], fn)
		}
	}
}
