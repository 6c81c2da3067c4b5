// Калькулятор: настоящий разбор выражений вместо eval.

package std

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ilkoid/cotools-ai/pkg/tools"
)

// CalculatorTool вычисляет арифметические выражения.
//
// Поддерживает + - * /, скобки, унарный минус и числа с плавающей
// точкой. Стандартный приоритет операций: * и / выше + и -.
type CalculatorTool struct{}

// Definition возвращает описание инструмента.
func (t *CalculatorTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "Calculator",
		Description: "Perform mathematical calculations and solve equations.",
	}
}

// Execute вычисляет выражение.
//
// Параметры: {"expression": string}. Ошибка разбора возвращается в
// результате, а не как error: кривое выражение — нормальный исход
// демонстрации, он вшивается в transcript.
func (t *CalculatorTool) Execute(_ context.Context, argsJSON string) (string, error) {
	var args struct {
		Expression string `json:"expression"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("invalid calculator parameters: %w", err)
	}
	if strings.TrimSpace(args.Expression) == "" {
		return "", fmt.Errorf("calculation requires an expression")
	}

	result, err := evaluate(args.Expression)
	if err != nil {
		return fmt.Sprintf("Error calculating %s: %v", args.Expression, err), nil
	}
	return fmt.Sprintf("Calculation result: %s = %s", args.Expression, formatNumber(result)), nil
}

// formatNumber убирает хвостовые нули: 84.0 → "84", 2.5 → "2.5".
func formatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// evaluate разбирает и вычисляет выражение.
//
// Recursive descent по грамматике:
//
//	expr   = term   { ("+" | "-") term }
//	term   = factor { ("*" | "/") factor }
//	factor = number | "(" expr ")" | "-" factor
func evaluate(input string) (float64, error) {
	p := &exprParser{input: input}
	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return result, nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *exprParser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseTerm() (float64, error) {
	left, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		}
	}
}

func (p *exprParser) parseFactor() (float64, error) {
	ch, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	switch {
	case ch == '(':
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		closing, ok := p.peek()
		if !ok || closing != ')' {
			return 0, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil

	case ch == '-':
		p.pos++
		inner, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		return -inner, nil

	default:
		return p.parseNumber()
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	value, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return value, nil
}

// Compile-time проверка реализации интерфейса.
var _ tools.Tool = (*CalculatorTool)(nil)
