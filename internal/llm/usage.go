package llm

import (
	"github.com/tidwall/gjson"
)

// Usage is the canonical token accounting for one completion call.
// CachedTokens is a subset of PromptTokens.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
	CachedTokens     int `json:"cachedTokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.CachedTokens += other.CachedTokens
}

// CacheHitRate returns cached prompt tokens as a percentage of prompt tokens.
// Caching only applies to the prompt, so total tokens are never the base.
func (u Usage) CacheHitRate() float64 {
	return CacheRate(u.CachedTokens, u.PromptTokens)
}

// CacheRate returns cached/prompt as a percentage clamped to [0, 100].
func CacheRate(cached, prompt int) float64 {
	if prompt <= 0 || cached <= 0 {
		return 0
	}
	if cached >= prompt {
		return 100
	}
	return float64(cached) / float64(prompt) * 100
}

// usageShape tags the usage payload variants seen from upstream backends.
type usageShape int

const (
	// shapeAbsent: no usage object, or null.
	shapeAbsent usageShape = iota
	// shapeStandard: prompt_tokens/completion_tokens/total_tokens with
	// optional prompt_tokens_details.cached_tokens.
	shapeStandard
	// shapeCacheHit: the standard counters plus prompt_cache_hit_tokens.
	shapeCacheHit
	// shapeUnknown: an object (or other value) with none of the known
	// counters. Normalized to zeros.
	shapeUnknown
)

func (s usageShape) String() string {
	switch s {
	case shapeAbsent:
		return "absent"
	case shapeStandard:
		return "standard"
	case shapeCacheHit:
		return "cache_hit"
	default:
		return "unknown"
	}
}

func detectUsageShape(r gjson.Result) usageShape {
	if !r.Exists() || r.Type == gjson.Null {
		return shapeAbsent
	}
	if !r.IsObject() {
		return shapeUnknown
	}
	switch {
	case r.Get("prompt_cache_hit_tokens").Exists():
		return shapeCacheHit
	case r.Get("prompt_tokens").Exists(),
		r.Get("completion_tokens").Exists(),
		r.Get("total_tokens").Exists():
		return shapeStandard
	default:
		return shapeUnknown
	}
}

// normalizeUsage maps any usage payload variant onto Usage. The boolean is
// false only when no usage was reported at all.
func normalizeUsage(r gjson.Result) (Usage, bool) {
	var u Usage
	switch detectUsageShape(r) {
	case shapeAbsent:
		return Usage{}, false
	case shapeStandard:
		u = baseCounters(r)
		u.CachedTokens = int(r.Get("prompt_tokens_details.cached_tokens").Int())
	case shapeCacheHit:
		u = baseCounters(r)
		u.CachedTokens = int(r.Get("prompt_cache_hit_tokens").Int())
	case shapeUnknown:
		// No recognized counters; the call still counts, with zero usage.
	}
	return clampUsage(u), true
}

// ParseUsage extracts and normalizes the "usage" member of a raw response
// body or stream chunk.
func ParseUsage(body []byte) (Usage, bool) {
	return normalizeUsage(gjson.GetBytes(body, "usage"))
}

func baseCounters(r gjson.Result) Usage {
	return Usage{
		PromptTokens:     int(r.Get("prompt_tokens").Int()),
		CompletionTokens: int(r.Get("completion_tokens").Int()),
		TotalTokens:      int(r.Get("total_tokens").Int()),
	}
}

func clampUsage(u Usage) Usage {
	if u.PromptTokens < 0 {
		u.PromptTokens = 0
	}
	if u.CompletionTokens < 0 {
		u.CompletionTokens = 0
	}
	if u.TotalTokens < 0 {
		u.TotalTokens = 0
	}
	if u.CachedTokens < 0 {
		u.CachedTokens = 0
	}
	if u.CachedTokens > u.PromptTokens {
		u.CachedTokens = u.PromptTokens
	}
	return u
}
