package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/pulse/internal/common"
	"github.com/Veraticus/pulse/internal/service"
)

// CompanyContext summarizes the business state handed to the analyst prompt.
type CompanyContext struct {
	RecentIssues   []string
	TotalTasks     int
	OverdueTasks   int
	CompletedTasks int
	TeamSize       int
	ActiveMembers  int
	CompletionRate float64
}

// Advisor wraps a Client with rate limiting, retries and a response cache. When the
// provider keeps failing it answers from the rule-based client instead.
type Advisor struct {
	client    Client
	fallback  Client
	cache     *responseCache
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts service.RetryOptions
}

// NewAdvisor wraps client. A nil client means rule-based only.
func NewAdvisor(cfg Config, client Client, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = NewRuleBasedClient()
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &Advisor{
		client:    client,
		fallback:  NewRuleBasedClient(),
		cache:     newResponseCache(cfg.CacheTTL),
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    logger,
		retryOpts: retryOpts,
	}
}

// Provider reports the primary provider name.
func (a *Advisor) Provider() string {
	return a.client.Provider()
}

// Chat answers the conversation. It only returns an error when ctx ends; provider
// failures degrade to the rule-based answer.
func (a *Advisor) Chat(ctx context.Context, messages []Message) (Response, error) {
	if len(messages) == 0 {
		return Response{}, fmt.Errorf("%w: no messages", common.ErrInvalidInput)
	}

	key := cacheKey(a.client.Provider(), messages)
	if cached, ok := a.cache.get(key); ok {
		a.logger.Debug("advisor cache hit", "provider", cached.Provider)
		return cached, nil
	}

	var response Response
	err := common.WithRetry(ctx, func() error {
		if err := a.limiter.wait(ctx); err != nil {
			return common.Permanent(err)
		}
		var chatErr error
		response, chatErr = a.client.Chat(ctx, messages)
		return chatErr
	}, a.retryOpts)

	if err == nil {
		a.cache.set(key, response)
		a.logger.Debug("advisor answered",
			"provider", response.Provider,
			"tokens", response.TokensUsed)
		return response, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Response{}, ctxErr
	}

	a.logger.Warn("AI provider failed, using rule-based analysis",
		"provider", a.client.Provider(),
		"error", err)
	return a.fallback.Chat(ctx, messages)
}

// Analyze asks for the three to five most important insights about the company.
func (a *Advisor) Analyze(ctx context.Context, company CompanyContext) (Response, error) {
	return a.Chat(ctx, AnalystMessages(company))
}

// AnalystMessages builds the analyst conversation for a company snapshot.
func AnalystMessages(company CompanyContext) []Message {
	issues := "none"
	if len(company.RecentIssues) > 0 {
		issues = strings.Join(company.RecentIssues, ", ")
	}

	system := fmt.Sprintf(`You are an AI business analyst for a CEO. Analyze company metrics and provide actionable insights.

Current context:
- Tasks: %d total, %d overdue, %d completed (%.0f%% rate)
- Team: %d members, %d active
- Recent issues: %s

Focus on:
1. Critical risks (overdue tasks, bottlenecks)
2. Opportunities (high completion rates, trends)
3. Anomalies (sudden changes)
4. Actionable recommendations

Be concise. CEO-level insights only.`,
		company.TotalTasks, company.OverdueTasks, company.CompletedTasks, company.CompletionRate,
		company.TeamSize, company.ActiveMembers, issues)

	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: "Analyze the current situation and give the 3-5 most important insights."},
	}
}
