package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"classguard-be/internal/dto"
	"classguard-be/internal/pkg/logger"
	"classguard-be/pkg/ratelimit"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
)

// errInferenceBudget marks a call skipped because the provider request
// budget is spent. Every caller resolves it with a local fallback.
var errInferenceBudget = errors.New("inference call budget exhausted")

const maxConcurrentAnalyses = 5

// inferenceBudgetKey is the shared limiter key: the budget protects the
// provider, not individual teachers.
const inferenceBudgetKey = "gemini"

// InferenceClient is the outbound surface to the model provider. Satisfied
// by gemini.Client.
type InferenceClient interface {
	Enabled() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateVision(ctx context.Context, prompt, imageBase64 string) (string, error)
}

type IAiService interface {
	ClassroomInsights(ctx context.Context, req *dto.ClassroomInsightsRequest) (*dto.ClassroomInsights, error)
	CheckAllCode(ctx context.Context, req *dto.CheckAllCodeRequest) (*dto.BatchCodeResults, error)
	MessageSuggestions(ctx context.Context, req *dto.StudentContext) (*dto.MessageSuggestions, error)
}

type aiService struct {
	client  InferenceClient
	limiter *ratelimit.Limiter
	cache   *gocache.Cache
	logger  logger.ILogger
}

func NewAiService(client InferenceClient, limiter *ratelimit.Limiter, cache *gocache.Cache, log logger.ILogger) IAiService {
	return &aiService{
		client:  client,
		limiter: limiter,
		cache:   cache,
		logger:  log,
	}
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// generateCached runs a text-only prompt through the provider with a
// response cache in front. The cache is consulted before the limiter so a
// hit never burns a budget slot. Vision prompts never go through here: two
// screenshots are never byte-identical, so caching them only burns memory.
func (s *aiService) generateCached(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(prompt)
	if cached, found := s.cache.Get(key); found {
		return cached.(string), nil
	}

	if !s.limiter.Allow(inferenceBudgetKey) {
		return "", errInferenceBudget
	}

	raw, err := s.client.GenerateText(ctx, prompt)
	if err != nil {
		return "", err
	}

	s.cache.Set(key, raw, gocache.DefaultExpiration)
	return raw, nil
}

// extractJSON pulls the first JSON object out of a model response, which
// routinely arrives wrapped in markdown fences or prose.
func extractJSON(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object in model response")
	}
	return raw[start : end+1], nil
}

func (s *aiService) ClassroomInsights(ctx context.Context, req *dto.ClassroomInsightsRequest) (*dto.ClassroomInsights, error) {
	if !s.client.Enabled() {
		return fallbackInsights(req), nil
	}

	metricsJSON, err := json.Marshal(req.Students)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`You are an experienced teaching assistant watching a programming classroom.
Analyze the following per-student activity metrics and respond with ONLY a JSON object of this exact shape:
{"engagement_percentage": <0-100>, "status": "<excellent|good|needs_attention|critical>", "attention_needed": [{"name": "", "reason": "", "urgency": "<low|medium|high>", "action": ""}], "positive_moments": [""], "class_mood": "", "recommendation": "", "predicted_issues": [""]}

Student metrics:
%s`, string(metricsJSON))

	raw, err := s.generateCached(ctx, prompt)
	if err != nil {
		if !errors.Is(err, errInferenceBudget) {
			s.logger.Warn("ai", "insights generation failed, using fallback", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return fallbackInsights(req), nil
	}

	extracted, err := extractJSON(raw)
	if err != nil {
		return fallbackInsights(req), nil
	}

	var insights dto.ClassroomInsights
	if err := json.Unmarshal([]byte(extracted), &insights); err != nil {
		return fallbackInsights(req), nil
	}
	return &insights, nil
}

// fallbackInsights computes engagement locally from the submitted metrics.
// Deterministic so dashboards degrade predictably when inference is down.
func fallbackInsights(req *dto.ClassroomInsightsRequest) *dto.ClassroomInsights {
	insights := &dto.ClassroomInsights{
		Status:          "good",
		AttentionNeeded: []dto.AttentionItem{},
		PositiveMoments: []string{},
		Recommendation:  "Automated analysis is unavailable. Review the attention list manually.",
	}

	if len(req.Students) == 0 {
		insights.Status = "needs_attention"
		insights.Recommendation = "No student activity reported yet."
		return insights
	}

	names := make([]string, 0, len(req.Students))
	for name := range req.Students {
		names = append(names, name)
	}
	sort.Strings(names)

	engaged := 0
	for _, name := range names {
		m := req.Students[name]
		if m.Violations == 0 && m.IdleTime <= m.ActiveTime {
			engaged++
		}
		if m.Violations > 0 {
			insights.AttentionNeeded = append(insights.AttentionNeeded, dto.AttentionItem{
				Name:    name,
				Reason:  "off-task activity detected",
				Urgency: "high",
				Action:  "check their screen",
			})
		} else if m.IdleTime > m.ActiveTime {
			insights.AttentionNeeded = append(insights.AttentionNeeded, dto.AttentionItem{
				Name:    name,
				Reason:  "idle for an extended period",
				Urgency: "medium",
				Action:  "ask if they are stuck",
			})
		}
		if m.Progress >= 80 {
			insights.PositiveMoments = append(insights.PositiveMoments, fmt.Sprintf("%s is making great progress", name))
		}
	}

	insights.EngagementPercentage = engaged * 100 / len(req.Students)
	switch {
	case insights.EngagementPercentage >= 80:
		insights.Status = "excellent"
	case insights.EngagementPercentage >= 60:
		insights.Status = "good"
	case insights.EngagementPercentage >= 40:
		insights.Status = "needs_attention"
	default:
		insights.Status = "critical"
	}
	return insights
}

func (s *aiService) CheckAllCode(ctx context.Context, req *dto.CheckAllCodeRequest) (*dto.BatchCodeResults, error) {
	results := &dto.BatchCodeResults{
		Correct:   []string{},
		HasIssues: []dto.StudentIssues{},
		Errors:    []dto.StudentIssues{},
		NoCode:    []string{},
		OffTask:   []string{},
	}

	analyses := make([]*dto.CodeAnalysis, len(req.Students))
	failures := make([]error, len(req.Students))

	if s.client.Enabled() {
		g, gctx := errgroup.WithContext(ctx)
		limit := maxConcurrentAnalyses
		if len(req.Students) < limit {
			limit = len(req.Students)
		}
		if limit > 0 {
			g.SetLimit(limit)
		}

		var mu sync.Mutex
		for i, student := range req.Students {
			i, student := i, student
			g.Go(func() error {
				analysis, err := s.analyzeScreen(gctx, student, req.Language)
				mu.Lock()
				analyses[i] = analysis
				failures[i] = err
				mu.Unlock()
				// One bad screenshot must not cancel the rest of the batch.
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range req.Students {
			analyses[i] = noAnalysisResult()
		}
	}

	for i, student := range req.Students {
		if failures[i] != nil {
			results.Errors = append(results.Errors, dto.StudentIssues{
				Name: student.Name,
				Issues: []dto.CodeIssue{{
					Type:        "analysis_failed",
					Description: failures[i].Error(),
					Severity:    "info",
				}},
			})
			continue
		}
		analysis := analyses[i]
		switch analysis.Status {
		case "correct":
			results.Correct = append(results.Correct, student.Name)
		case "has_issues":
			results.HasIssues = append(results.HasIssues, dto.StudentIssues{Name: student.Name, Issues: analysis.Issues})
		case "error":
			results.Errors = append(results.Errors, dto.StudentIssues{Name: student.Name, Issues: analysis.Issues})
		case "off_task":
			results.OffTask = append(results.OffTask, student.Name)
		default:
			results.NoCode = append(results.NoCode, student.Name)
		}
	}
	return results, nil
}

// noAnalysisResult is the zero-confidence stand-in for a screen that never
// reached the provider. Its status buckets the student into no_code.
func noAnalysisResult() *dto.CodeAnalysis {
	return &dto.CodeAnalysis{
		Status:     "no_analysis",
		Issues:     []dto.CodeIssue{},
		Confidence: 0,
	}
}

func (s *aiService) analyzeScreen(ctx context.Context, student dto.StudentScreen, language string) (*dto.CodeAnalysis, error) {
	// Every vision call claims its own budget slot; later students in a
	// big batch degrade individually once the window is spent.
	if !s.limiter.Allow(inferenceBudgetKey) {
		return noAnalysisResult(), nil
	}

	langHint := "any programming language"
	if language != "" {
		langHint = language
	}

	prompt := fmt.Sprintf(`You are reviewing a student's screen during a %s programming exercise.
Respond with ONLY a JSON object of this exact shape:
{"has_code": <bool>, "language_detected": "", "status": "<correct|has_issues|error|no_code|off_task>", "issues": [{"type": "", "description": "", "line": null, "severity": "<low|medium|high>"}], "positive_aspects": [""], "suggestions": [""], "confidence": <0-100>}`, langHint)

	raw, err := s.client.GenerateVision(ctx, prompt, student.Screenshot)
	if err != nil {
		return nil, err
	}

	extracted, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var analysis dto.CodeAnalysis
	if err := json.Unmarshal([]byte(extracted), &analysis); err != nil {
		return nil, fmt.Errorf("malformed analysis: %w", err)
	}
	if analysis.Issues == nil {
		analysis.Issues = []dto.CodeIssue{}
	}
	return &analysis, nil
}

func (s *aiService) MessageSuggestions(ctx context.Context, req *dto.StudentContext) (*dto.MessageSuggestions, error) {
	if !s.client.Enabled() {
		return fallbackSuggestions(req.Name), nil
	}

	contextJSON, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Suggest three short messages a teacher could send to this student right now.
Respond with ONLY a JSON object: {"encouraging": "", "direct": "", "helpful": ""}

Student context:
%s`, string(contextJSON))

	raw, err := s.generateCached(ctx, prompt)
	if err != nil {
		if !errors.Is(err, errInferenceBudget) {
			s.logger.Warn("ai", "suggestion generation failed, using fallback", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return fallbackSuggestions(req.Name), nil
	}

	extracted, err := extractJSON(raw)
	if err != nil {
		return fallbackSuggestions(req.Name), nil
	}

	var suggestions dto.MessageSuggestions
	if err := json.Unmarshal([]byte(extracted), &suggestions); err != nil {
		return fallbackSuggestions(req.Name), nil
	}
	return &suggestions, nil
}

func fallbackSuggestions(name string) *dto.MessageSuggestions {
	if name == "" {
		name = "there"
	}
	return &dto.MessageSuggestions{
		Encouraging: fmt.Sprintf("Keep going, %s! You are making progress.", name),
		Direct:      fmt.Sprintf("%s, please focus on the assigned task.", name),
		Helpful:     fmt.Sprintf("%s, check the example on the board if you are stuck.", name),
	}
}
