package verify

import (
    "context"
    "encoding/json"
    "fmt"
    "math"
    "regexp"
    "strings"

    "github.com/rs/zerolog/log"
    openai "github.com/sashabaranov/go-openai"

    "github.com/hyperifyio/gopnl/internal/cache"
    "github.com/hyperifyio/gopnl/internal/extract"
    "github.com/hyperifyio/gopnl/internal/money"
)

// ChatClient mirrors the subset we need from the OpenAI client for testability.
type ChatClient interface {
    CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Source values for Assessment.Source.
const (
    SourceHeuristic = "heuristic"
    SourceModel     = "model"
)

// Assessment is how far a caller should trust an extracted figure.
type Assessment struct {
    Confidence float64 `json:"confidence"`
    Supported  bool    `json:"supported"`
    Reason     string  `json:"reason"`
    Source     string  `json:"source"`
}

// strategyTrust is the base confidence per winning strategy. Signature-based
// matches on the known card rank highest; the loose card fallback may pick
// an unrelated figure.
var strategyTrust = map[extract.StrategyID]float64{
    extract.StrategyStructuralClass:   0.7,
    extract.StrategyStructuralStyle:   0.6,
    extract.StrategyAnalysisCard:      0.6,
    extract.StrategyAnalysisCardLoose: 0.3,
    extract.StrategyRawProximity:      0.5,
    extract.StrategyLabel:             0.4,
    extract.StrategyEmbeddedData:      0.6,
}

const (
    contextBonus  = 0.1
    maxConfidence = 0.95
)

var (
    sevenDayRe = regexp.MustCompile(`(?i)7\s*D|seven\s*day`)
    realizedRe = regexp.MustCompile(`(?i)realiz`)
)

// Heuristic scores r from its strategy alone, plus a small bonus when the
// captured context names both the 7-day window and realized profit.
func Heuristic(r extract.Result) Assessment {
    if !r.Found() {
        return Assessment{Confidence: 0, Supported: false, Reason: "no strategy matched", Source: SourceHeuristic}
    }
    conf := strategyTrust[r.Strategy]
    reason := fmt.Sprintf("matched by %s", r.Strategy)
    if sevenDayRe.MatchString(r.Context) && realizedRe.MatchString(r.Context) {
        conf += contextBonus
        reason += "; context names the 7-day realized figure"
    }
    conf = round2(math.Min(conf, maxConfidence))
    return Assessment{Confidence: conf, Supported: conf >= 0.5, Reason: reason, Source: SourceHeuristic}
}

// Verifier adds an optional model second opinion on top of Heuristic.
type Verifier struct {
    Client ChatClient
    Cache  *cache.VerdictCache
    // SystemPrompt, when non-empty, overrides the default system message.
    SystemPrompt string
}

type verdict struct {
    Supported  bool    `json:"supported"`
    Confidence float64 `json:"confidence"`
    Reason     string  `json:"reason"`
}

// Assess returns the heuristic assessment, blended with the model's verdict
// when a client and model are configured and the model answers with valid
// JSON. Model failures never fail the assessment.
func (v *Verifier) Assess(ctx context.Context, r extract.Result, model string) (Assessment, error) {
    base := Heuristic(r)
    if v == nil || v.Client == nil || strings.TrimSpace(model) == "" || !r.Found() {
        return base, nil
    }
    sys := buildSystemMessage()
    if strings.TrimSpace(v.SystemPrompt) != "" {
        sys = v.SystemPrompt
    }
    user := buildUserMessage(r)
    key := cache.KeyFrom(model, sys+"\n\n"+user)

    if v.Cache != nil {
        if raw, ok, _ := v.Cache.Get(ctx, key); ok {
            if vd, err := parseVerdict(string(raw)); err == nil {
                log.Debug().Str("model", model).Msg("trust verdict from cache")
                return blend(base, vd), nil
            }
        }
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: sys},
            {Role: openai.ChatMessageRoleUser, Content: user},
        },
        Temperature: 0.0,
        N:           1,
    }
    resp, err := v.Client.CreateChatCompletion(ctx, req)
    if err != nil {
        log.Warn().Err(err).Msg("trust assessment call failed; using heuristic")
        return base, nil
    }
    if len(resp.Choices) == 0 {
        return base, nil
    }
    vd, err := parseVerdict(resp.Choices[0].Message.Content)
    if err != nil {
        log.Warn().Err(err).Msg("unparseable trust verdict; using heuristic")
        return base, nil
    }
    if v.Cache != nil {
        if b, err := json.Marshal(vd); err == nil {
            _ = v.Cache.Save(ctx, key, b)
        }
    }
    return blend(base, vd), nil
}

// blend averages the two confidences when the model agrees and halves the
// lower one when it does not.
func blend(base Assessment, vd verdict) Assessment {
    mc := math.Max(0, math.Min(vd.Confidence, 1))
    out := Assessment{Supported: vd.Supported, Source: SourceModel, Reason: strings.TrimSpace(vd.Reason)}
    if vd.Supported {
        out.Confidence = (base.Confidence + mc) / 2
    } else {
        out.Confidence = math.Min(base.Confidence, mc) / 2
    }
    out.Confidence = round2(math.Min(out.Confidence, maxConfidence))
    if out.Reason == "" {
        out.Reason = base.Reason
    }
    return out
}

func parseVerdict(raw string) (verdict, error) {
    raw = strings.TrimSpace(raw)
    // Tolerate a fenced block around the object.
    if i, j := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); i >= 0 && j > i {
        raw = raw[i : j+1]
    }
    var vd verdict
    if err := json.Unmarshal([]byte(raw), &vd); err != nil {
        return verdict{}, fmt.Errorf("decode verdict: %w", err)
    }
    if math.IsNaN(vd.Confidence) {
        return verdict{}, fmt.Errorf("decode verdict: confidence is NaN")
    }
    return vd, nil
}

func buildSystemMessage() string {
    return "You check figures scraped from crypto wallet pages. Respond with strict JSON only: {\"supported\":bool,\"confidence\":number between 0 and 1,\"reason\":string}. supported=true only when the surrounding text shows the amount is the 7-day realized profit/loss of the wallet."
}

func buildUserMessage(r extract.Result) string {
    var sb strings.Builder
    sb.WriteString("Is this amount the wallet's 7-day realized PnL?\n")
    sb.WriteString("Strategy: ")
    sb.WriteString(string(r.Strategy))
    sb.WriteString("\nAmount: ")
    sb.WriteString(money.FormatUSD(*r.Value))
    if r.Raw != "" {
        sb.WriteString("\nMatched text: ")
        sb.WriteString(r.Raw)
    }
    if r.Context != "" {
        sb.WriteString("\nContext:\n")
        sb.WriteString(r.Context)
    }
    return sb.String()
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
