package rules

import (
	"fmt"

	"github.com/wflint/wflint/pkg/audit"
	"github.com/wflint/wflint/pkg/expr"
	"github.com/wflint/wflint/pkg/finding"
	"github.com/wflint/wflint/pkg/model"
	"github.com/wflint/wflint/pkg/subfeature"
)

const botConditionsIdent = "bot-conditions"

func init() {
	audit.Register(botConditionsIdent, func(ctx *audit.Context) (audit.Audit, error) {
		return botConditionsAudit{}, nil
	})
}

// botConditionsAudit flags an `if:` condition that gates privileged
// behavior on an equality comparison against `github.actor` (or
// `github.actor_id`), grounded on audit/bot_conditions.rs: such checks are
// spoofable by any actor who can set their own username/ID, most commonly
// attempted to impersonate `dependabot[bot]` or similar automation
// accounts.
type botConditionsAudit struct{}

func (botConditionsAudit) Meta() audit.Meta {
	return audit.Meta{
		Ident: botConditionsIdent,
		Desc:  "detects spoofable bot/actor conditions",
		URL:   "https://docs.wflint.dev/audits/#bot-conditions",
	}
}

// actorEqualityVisitor collects every BinOp that compares a
// github.actor[_id] context against a string literal.
type actorEqualityVisitor struct {
	expr.BaseVisitor
	hits []*expr.BinOp
}

func (v *actorEqualityVisitor) VisitBinOp(n *expr.BinOp) bool {
	if (n.Op == expr.OpEq || n.Op == expr.OpNeq) && isActorComparison(n) {
		v.hits = append(v.hits, n)
	}
	return true
}

func isActorComparison(n *expr.BinOp) bool {
	return isActorContext(n.LHS) && isLiteralOrString(n.RHS) || isActorContext(n.RHS) && isLiteralOrString(n.LHS)
}

func isActorContext(e expr.Expr) bool {
	c, ok := expr.AsContext(e)
	if !ok {
		return false
	}
	return c.ChildOf("github.actor") || c.ChildOf("github.actor_id") || c.ChildOf("github.triggering_actor")
}

func isLiteralOrString(e expr.Expr) bool {
	switch e.(type) {
	case *expr.Literal, *expr.String:
		return true
	default:
		return false
	}
}

// checkCondition scans cond for actor-spoofable comparisons. GitHub Actions
// allows an `if:` value to be either a bare expression or one wrapped in
// `${{ ... }}`; fenced text is scanned fence-by-fence, and an unfenced
// condition is parsed as a single implicit expression.
func (botConditionsAudit) checkCondition(cond string, loc finding.SymbolicLocation, docs *finding.DocumentSet) ([]*finding.Finding, error) {
	if cond == "" {
		return nil, nil
	}

	fences := expr.FindFences(cond)
	if len(fences) == 0 {
		fences = []expr.Fence{{Inner: cond, Start: 0, End: len(cond)}}
	}

	var out []*finding.Finding
	for _, fence := range fences {
		e, err := expr.Parse(fence.Inner)
		if err != nil {
			continue
		}

		v := &actorEqualityVisitor{}
		expr.Walk(v, e)

		for _, bo := range v.hits {
			org := bo.Origin()
			fragment := fence.Inner[org.Start:org.End]
			f, err := finding.NewBuilder(botConditionsIdent,
				fmt.Sprintf("spoofable condition %q", fragment),
				"https://docs.wflint.dev/audits/#bot-conditions").
				Severity(finding.SeverityMedium).
				Confidence(finding.ConfidenceHigh).
				Persona(finding.PersonaPedantic).
				AddLocation(loc.WithSubfeature(subfeature.New(0, fragment)).WithPrimary()).
				Build(docs)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		}
	}

	return out, nil
}

func (a botConditionsAudit) AuditStep(ctx *audit.Context, step *model.Step, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	return a.checkCondition(step.If, step.Location().WithKeys("if"), ctx.Docs)
}

func (a botConditionsAudit) AuditNormalJob(ctx *audit.Context, job *model.NormalJob, wf *model.Workflow) ([]*finding.Finding, error) {
	return a.checkCondition(job.If(), job.Location().WithKeys("if"), ctx.Docs)
}
