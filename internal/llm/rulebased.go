package llm

import (
	"context"
	"strings"
)

// ruleBasedClient answers from canned analyses keyed on the last user message. It is
// offline, free and never fails, which makes it the fallback for every other provider.
type ruleBasedClient struct{}

// NewRuleBasedClient returns the offline client.
func NewRuleBasedClient() Client {
	return ruleBasedClient{}
}

func (ruleBasedClient) Provider() string { return ProviderRuleBased }

type cannedReply struct {
	content    string
	keywords   []string
	confidence float64
}

var cannedReplies = []cannedReply{
	{
		keywords:   []string{"overdue", "late", "deadline"},
		confidence: 0.8,
		content: `Warning: overdue tasks need attention.

Several tasks are past their deadline:
- Handle urgent tasks first
- Review current assignments
- Consider redistributing workload

Next steps:
1. Meet with the team today
2. Re-prioritize open tasks
3. Add resources where needed`,
	},
	{
		keywords:   []string{"analy", "status", "overview", "insight"},
		confidence: 0.75,
		content: `Overview

Strengths:
- The team has steady momentum
- Many tasks were completed recently

Weaknesses:
- Overdue tasks are growing
- Completion rate has room to improve

Recommendations:
1. Clear overdue tasks first
2. Streamline the workflow to avoid bottlenecks
3. Set up automatic deadline alerts`,
	},
	{
		keywords:   []string{"revenue", "budget", "finance", "spend"},
		confidence: 0.6,
		content: `Financial analysis

There is not enough financial history for a detailed analysis yet.

To get there:
- Record budget spend regularly
- Track revenue over time
- Define KPI targets`,
	},
}

const defaultReply = `I can help with:

1. Task analysis: overdue work and completion rates
2. Team insights: productivity and workload
3. Alerts: critical issues that need attention

Tell me which area to focus on for a deeper analysis.`

// Chat picks the first canned analysis whose keywords appear in the last user message.
func (ruleBasedClient) Chat(_ context.Context, messages []Message) (Response, error) {
	query := strings.ToLower(lastUserMessage(messages))

	for _, reply := range cannedReplies {
		for _, kw := range reply.keywords {
			if strings.Contains(query, kw) {
				return Response{Content: reply.content, Provider: ProviderRuleBased, Confidence: reply.confidence}, nil
			}
		}
	}

	return Response{Content: defaultReply, Provider: ProviderRuleBased, Confidence: 0.7}, nil
}
