package automation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"leadflow/pkg/cel"
)

// Lead snapshot keys read by condition expressions.
const (
	LeadPipelineStage              = "pipelineStage"
	LeadFormID                     = "formId"
	LeadSegmentIDs                 = "segmentIds"
	LeadMinutesSinceFormSubmission = "minutesSinceFormSubmission"
	LeadMinutesSinceActivity       = "minutesSinceActivity"
)

// ConditionExpression renders a condition map as a CEL expression over the
// "lead" variable. Every set condition must hold; a nil map is "true". A
// lead with no recorded submission or activity satisfies the corresponding
// "no ... since" condition.
func ConditionExpression(c *ConditionMap) string {
	if c.IsEmpty() {
		return "true"
	}

	var clauses []string
	if c.PipelineStageIs != "" {
		clauses = append(clauses, fmt.Sprintf("(has(lead.%s) && lead.%s == %s)",
			LeadPipelineStage, LeadPipelineStage, strconv.Quote(c.PipelineStageIs)))
	}
	if c.FormIDIs != "" {
		clauses = append(clauses, fmt.Sprintf("(has(lead.%s) && lead.%s == %s)",
			LeadFormID, LeadFormID, strconv.Quote(c.FormIDIs)))
	}
	if c.SegmentID != "" {
		clauses = append(clauses, fmt.Sprintf("(has(lead.%s) && %s in lead.%s)",
			LeadSegmentIDs, strconv.Quote(c.SegmentID), LeadSegmentIDs))
	}
	if c.NoFormSubmissionSinceMinutes != nil {
		clauses = append(clauses, idleClause(LeadMinutesSinceFormSubmission, *c.NoFormSubmissionSinceMinutes))
	}
	if c.NoActivitySinceMinutes != nil {
		clauses = append(clauses, idleClause(LeadMinutesSinceActivity, *c.NoActivitySinceMinutes))
	}
	return strings.Join(clauses, " && ")
}

func idleClause(field string, minutes int) string {
	return fmt.Sprintf("(!has(lead.%s) || double(lead.%s) >= %d.0)", field, field, minutes)
}

type PreviewResult struct {
	Expression string `json:"expression"`
	Matched    bool   `json:"matched"`
}

// Previewer evaluates trigger conditions against a sample lead locally. It
// never talks to the backend.
type Previewer struct {
	evaluator *cel.Evaluator
}

func NewPreviewer() (*Previewer, error) {
	evaluator, err := cel.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL evaluator: %w", err)
	}
	return &Previewer{evaluator: evaluator}, nil
}

func (p *Previewer) Preview(ctx context.Context, conditions *ConditionMap, lead map[string]interface{}) (PreviewResult, error) {
	expr := ConditionExpression(conditions)
	matched, err := p.evaluator.Evaluate(ctx, expr, lead)
	if err != nil {
		return PreviewResult{Expression: expr}, err
	}
	return PreviewResult{Expression: expr, Matched: matched}, nil
}

// PreviewDraft compiles the draft's conditions and previews them.
func (p *Previewer) PreviewDraft(ctx context.Context, draft ConditionDraft, lead map[string]interface{}) (PreviewResult, error) {
	return p.Preview(ctx, CompileConditions(draft), lead)
}
