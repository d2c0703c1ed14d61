package domain

import (
	"context"
	"testing"
)

func TestResultMergeAndHasBlocking(t *testing.T) {
	var res Result
	if res.HasBlocking() {
		t.Fatalf("empty result should not block")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "a", Severity: SeverityWarn}}})
	if res.HasBlocking() {
		t.Fatalf("warn-only result should not block")
	}
	res.Merge(Result{Violations: []Violation{{Rule: "b", Severity: SeverityBlock}}})
	if !res.HasBlocking() {
		t.Fatalf("expected blocking after merge")
	}
	if len(res.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(res.Violations))
	}
}

type staticRule struct {
	name string
	res  Result
}

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, TransactionView, []Change) (Result, error) {
	return r.res, nil
}

func TestRulesEngineAggregates(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "one", res: Result{Violations: []Violation{{Rule: "one", Severity: SeverityLog}}}})
	engine.Register(staticRule{name: "two", res: Result{Violations: []Violation{{Rule: "two", Severity: SeverityWarn}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(res.Violations))
	}
	if res.Violations[0].Rule != "one" || res.Violations[1].Rule != "two" {
		t.Fatalf("violations out of registration order: %+v", res.Violations)
	}
}

func TestTypedErrorMessages(t *testing.T) {
	if got := (NotFoundError{Entity: EntityProduct, ID: "p1"}).Error(); got != "product p1 not found" {
		t.Fatalf("not found message = %q", got)
	}
	if got := (ConflictError{Entity: EntityProduct, ID: "p1"}).Error(); got != "product p1 already exists" {
		t.Fatalf("conflict message = %q", got)
	}
	if got := (RuleViolationError{}).Error(); got != "transaction blocked by rules" {
		t.Fatalf("rule violation message = %q", got)
	}
}
