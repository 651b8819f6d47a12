package pipeline

import (
	"strings"
	"testing"

	"github.com/samjoash9/baiscript/pkg/tac"
)

func TestCompile_SimplePrint(t *testing.T) {
	res, err := Compile("ENTEGER a = 5;\nPRENT a;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if res.ErrorCount != 0 {
		t.Fatalf("expected no semantic errors, got %d", res.ErrorCount)
	}
	if !strings.Contains(res.PrintOutput, "5") {
		t.Errorf("expected print output to contain '5', got %q", res.PrintOutput)
	}
	if !strings.Contains(res.PrintOutput, successBanner) {
		t.Errorf("expected success banner in print output, got %q", res.PrintOutput)
	}

	foundRaw, foundOpt := false, false
	for _, inst := range res.TACRaw {
		if inst.String() == "a = 5" {
			foundRaw = true
		}
	}
	for _, inst := range res.TACOptimized {
		if inst.String() == "a = 5" {
			foundOpt = true
		}
	}
	if !foundRaw || !foundOpt {
		t.Errorf("expected 'a = 5' in both TAC listings, raw=%v optimized=%v", res.TACRaw, res.TACOptimized)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", res.ExitCode)
	}
}

func TestCompile_PostfixSemantics(t *testing.T) {
	res, err := Compile("ENTEGER i = 3;\nPRENT i++;\nPRENT i;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if res.PrintOutput == "" {
		t.Fatal("expected non-empty print output")
	}
	lines := strings.Split(strings.TrimSpace(res.PrintOutput), "\n")
	if len(lines) < 2 || lines[0] != "3" || lines[1] != "4" {
		t.Errorf("expected print output to start with \"3\\n4\", got %v", lines)
	}
}

func TestCompile_PrefixSemantics(t *testing.T) {
	res, err := Compile("ENTEGER i = 3;\nPRENT ++i;\nPRENT i;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(res.PrintOutput), "\n")
	if len(lines) < 2 || lines[0] != "4" || lines[1] != "4" {
		t.Errorf("expected print output to start with \"4\\n4\", got %v", lines)
	}
}

func TestCompile_CharPromotion(t *testing.T) {
	res, err := Compile("CHAROT c = 'A' + 1;\nPRENT c;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(res.PrintOutput), "\n")
	if len(lines) < 1 || lines[0] != "B" {
		t.Errorf("expected print output to start with \"B\", got %v", lines)
	}
}

func TestCompile_RedeclarationError(t *testing.T) {
	res, err := Compile("ENTEGER x;\nENTEGER x;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if res.ErrorCount != 1 {
		t.Fatalf("expected exactly 1 semantic error, got %d", res.ErrorCount)
	}
	if res.ExitCode != 1 {
		t.Errorf("expected exit code 1, got %d", res.ExitCode)
	}
	if res.TACRaw != nil || res.Assembly != nil || res.Machine != nil {
		t.Errorf("expected no downstream artifacts on a semantic error")
	}
	if !strings.Contains(res.PrintOutput, "Redeclaration of variable 'x'") {
		t.Errorf("expected redeclaration message in print output, got %q", res.PrintOutput)
	}
}

func TestCompile_RedeclaredInitializerContributesOneError(t *testing.T) {
	res, err := Compile("ENTEGER x;\nENTEGER x = y;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	// The initializer references undeclared 'y', but a redeclared
	// declarator's initializer is never evaluated, so only the
	// redeclaration itself is reported.
	if res.ErrorCount != 1 {
		t.Fatalf("expected exactly 1 semantic error, got %d: %v", res.ErrorCount, res.Diagnostics)
	}
	if !strings.Contains(res.PrintOutput, "Redeclaration of variable 'x'") {
		t.Errorf("expected redeclaration message in print output, got %q", res.PrintOutput)
	}
	if strings.Contains(res.PrintOutput, "Undeclared identifier 'y'") {
		t.Errorf("expected the skipped initializer not to be evaluated, got %q", res.PrintOutput)
	}
}

func TestCompile_UnusedVariableWarning(t *testing.T) {
	res, err := Compile("ENTEGER x;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if res.ErrorCount != 0 {
		t.Fatalf("expected no errors, got %d", res.ErrorCount)
	}
	if res.WarningCount != 1 {
		t.Fatalf("expected exactly 1 warning, got %d", res.WarningCount)
	}
	if res.ExitCode != 0 {
		t.Errorf("expected exit code 0 despite the warning, got %d", res.ExitCode)
	}
}

func TestCompile_DivisionByZero(t *testing.T) {
	res, err := Compile("ENTEGER x = 10 / 0;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if res.ErrorCount != 1 {
		t.Fatalf("expected exactly 1 error, got %d", res.ErrorCount)
	}
	if res.TACRaw != nil {
		t.Errorf("expected no TAC to be generated on a semantic error")
	}
}

func TestCompile_ErrorCountMatchesDiagnosticLines(t *testing.T) {
	res, err := Compile("ENTEGER x;\nENTEGER x;\nCHAROT y;\nCHAROT y;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	errorLines := 0
	for _, line := range strings.Split(res.PrintOutput, "\n") {
		if strings.HasPrefix(line, "[SEM ERROR]") {
			errorLines++
		}
	}
	if errorLines != res.ErrorCount {
		t.Errorf("expected %d '[SEM ERROR]' lines, found %d", res.ErrorCount, errorLines)
	}
}

func TestCompile_TempInliningLeavesEveryTempConsumed(t *testing.T) {
	res, err := Compile("ENTEGER a;\nENTEGER b;\na = 2 + 3 * 4;\n")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	if len(res.TACOptimized) == 0 {
		t.Fatal("expected a non-empty optimized TAC listing")
	}

	used := map[string]int{}
	for _, inst := range res.TACOptimized {
		for _, operand := range []tac.Operand{inst.Arg1, inst.Arg2} {
			if operand.Kind == tac.OperandTemp {
				used[operand.Name]++
			}
		}
	}
	for _, inst := range res.TACOptimized {
		if inst.Result.Kind == tac.OperandTemp && used[inst.Result.Name] == 0 {
			t.Errorf("temp %q survived optimization with zero consumers", inst.Result.Name)
		}
	}
}

func TestRun_AccumulatesAcrossCalls(t *testing.T) {
	r := NewRun()
	res1, err := r.Compile("ENTEGER x = 1;\n")
	if err != nil {
		t.Fatalf("first Compile returned error: %v", err)
	}
	if res1.ErrorCount != 0 {
		t.Fatalf("expected first run to succeed, got %d errors", res1.ErrorCount)
	}

	res2, err := r.Compile("PRENT x;\n")
	if err != nil {
		t.Fatalf("second Compile returned error: %v", err)
	}
	if res2.ErrorCount != 0 {
		t.Fatalf("expected the symbol table to carry 'x' across runs, got %d errors: %v", res2.ErrorCount, res2.Diagnostics)
	}
	if !strings.Contains(res2.PrintOutput, "1") {
		t.Errorf("expected the second run to print the value carried from the first, got %q", res2.PrintOutput)
	}
}
