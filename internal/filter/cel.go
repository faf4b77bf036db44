package filter

import (
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/rzbill/siphon/internal/model"
)

// exprFilter wraps a compiled CEL program. When disabled, Eval always
// returns true.
type exprFilter struct {
	prog    cel.Program
	enabled bool
}

func newExprFilter(expr string) (exprFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return exprFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("level", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("clientId", cel.StringType),
		cel.Variable("sessionId", cel.StringType),
		cel.Variable("source", cel.StringType),
		cel.Variable("sequence", cel.IntType),
		cel.Variable("ts_ms", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
		// Parsed data attachment for field-level filtering.
		cel.Variable("data", cel.DynType),
	)
	if err != nil {
		return exprFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return exprFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return exprFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return exprFilter{}, err
	}
	return exprFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against an entry. Evaluation
// errors fail the entry, not the whole read.
func (f exprFilter) Eval(e *model.LogEntry) bool {
	if !f.enabled {
		return true
	}
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	out, _, err := f.prog.Eval(map[string]any{
		"level":     string(e.Level),
		"message":   e.Message,
		"clientId":  e.ClientID,
		"sessionId": e.SessionID,
		"source":    e.Source,
		"sequence":  int64(e.Sequence),
		"ts_ms":     entryMs(e.Timestamp),
		"now_ms":    time.Now().UnixMilli(),
		"data":      data,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
