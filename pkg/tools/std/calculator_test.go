package std

import (
	"context"
	"strings"
	"testing"
)

// TestCalculatorTool тестирует вычисление выражений.
func TestCalculatorTool(t *testing.T) {
	tool := &CalculatorTool{}
	ctx := context.Background()

	tests := []struct {
		name string
		expr string
		want string
	}{
		{"addition", "2 + 3", "Calculation result: 2 + 3 = 5"},
		{"precedence", "2 + 3 * 4", "Calculation result: 2 + 3 * 4 = 14"},
		{"parentheses", "(2 + 3) * 4", "Calculation result: (2 + 3) * 4 = 20"},
		{"division", "10 / 4", "Calculation result: 10 / 4 = 2.5"},
		{"unary minus", "-5 + 3", "Calculation result: -5 + 3 = -2"},
		{"nested parens", "((1 + 2) * (3 + 4))", "Calculation result: ((1 + 2) * (3 + 4)) = 21"},
		{"float input", "1.5 * 2", "Calculation result: 1.5 * 2 = 3"},
		{"no spaces", "12*7", "Calculation result: 12*7 = 84"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Execute(ctx, `{"expression":"`+tt.expr+`"}`)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if got != tt.want {
				t.Errorf("Execute(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

// TestCalculatorTool_ParseErrors тестирует что ошибка разбора приходит
// в результате, а не как error.
func TestCalculatorTool_ParseErrors(t *testing.T) {
	tool := &CalculatorTool{}
	ctx := context.Background()

	tests := []struct {
		name string
		expr string
	}{
		{"division by zero", "1 / 0"},
		{"trailing operator", "2 +"},
		{"garbage", "hello"},
		{"unclosed paren", "(1 + 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tool.Execute(ctx, `{"expression":"`+tt.expr+`"}`)
			if err != nil {
				t.Fatalf("Parse error must fold into the result, got error: %v", err)
			}
			if !strings.HasPrefix(got, "Error calculating") {
				t.Errorf("Execute(%q) = %q, want error-in-result format", tt.expr, got)
			}
		})
	}
}

// TestCalculatorTool_EmptyExpression тестирует валидацию параметров.
func TestCalculatorTool_EmptyExpression(t *testing.T) {
	tool := &CalculatorTool{}
	ctx := context.Background()

	if _, err := tool.Execute(ctx, `{"expression":"  "}`); err == nil {
		t.Error("Blank expression expected error, got nil")
	}
	if _, err := tool.Execute(ctx, `broken`); err == nil {
		t.Error("Invalid JSON expected error, got nil")
	}
}

// TestEvaluate тестирует парсер напрямую.
func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr    string
		want    float64
		wantErr bool
	}{
		{"1 + 2 * 3 - 4 / 2", 5, false},
		{"-(2 + 3)", -5, false},
		{"--5", 5, false},
		{"0.1 + 0.2 * 10", 2.1, false},
		{"1 +", 0, true},
		{"(", 0, true},
		{"2 2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := evaluate(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("evaluate(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("evaluate(%q) = %g, want %g", tt.expr, got, tt.want)
			}
		})
	}
}
