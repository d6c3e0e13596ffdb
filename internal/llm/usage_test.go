package llm

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestParseUsage_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		shape usageShape
		ok    bool
		want  Usage
	}{
		{
			name:  "absent",
			body:  `{"choices":[]}`,
			shape: shapeAbsent,
		},
		{
			name:  "null",
			body:  `{"usage":null}`,
			shape: shapeAbsent,
		},
		{
			name:  "standard without details",
			body:  `{"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`,
			shape: shapeStandard,
			ok:    true,
			want:  Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		},
		{
			name:  "standard with cached details",
			body:  `{"usage":{"prompt_tokens":200,"completion_tokens":5,"total_tokens":205,"prompt_tokens_details":{"cached_tokens":150}}}`,
			shape: shapeStandard,
			ok:    true,
			want:  Usage{PromptTokens: 200, CompletionTokens: 5, TotalTokens: 205, CachedTokens: 150},
		},
		{
			name:  "cache hit field",
			body:  `{"usage":{"prompt_tokens":80,"completion_tokens":2,"total_tokens":82,"prompt_cache_hit_tokens":64,"prompt_cache_miss_tokens":16}}`,
			shape: shapeCacheHit,
			ok:    true,
			want:  Usage{PromptTokens: 80, CompletionTokens: 2, TotalTokens: 82, CachedTokens: 64},
		},
		{
			name:  "unknown object",
			body:  `{"usage":{"input":3,"output":4}}`,
			shape: shapeUnknown,
			ok:    true,
		},
		{
			name:  "non-object",
			body:  `{"usage":"n/a"}`,
			shape: shapeUnknown,
			ok:    true,
		},
		{
			name:  "cached exceeds prompt",
			body:  `{"usage":{"prompt_tokens":10,"completion_tokens":1,"total_tokens":11,"prompt_cache_hit_tokens":99}}`,
			shape: shapeCacheHit,
			ok:    true,
			want:  Usage{PromptTokens: 10, CompletionTokens: 1, TotalTokens: 11, CachedTokens: 10},
		},
		{
			name:  "negative counters",
			body:  `{"usage":{"prompt_tokens":-5,"completion_tokens":3,"total_tokens":-1,"prompt_tokens_details":{"cached_tokens":-2}}}`,
			shape: shapeStandard,
			ok:    true,
			want:  Usage{CompletionTokens: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectUsageShape(gjson.Get(tt.body, "usage")); got != tt.shape {
				t.Errorf("shape = %s, want %s", got, tt.shape)
			}
			got, ok := ParseUsage([]byte(tt.body))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("usage = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCacheRate(t *testing.T) {
	tests := []struct {
		cached, prompt int
		want           float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 100, 0},
		{25, 100, 25},
		{150, 100, 100},
		{-1, 100, 0},
	}
	for _, tt := range tests {
		if got := CacheRate(tt.cached, tt.prompt); got != tt.want {
			t.Errorf("CacheRate(%d, %d) = %v, want %v", tt.cached, tt.prompt, got, tt.want)
		}
	}
}

func TestUsage_Add(t *testing.T) {
	var u Usage
	u.Add(Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12, CachedTokens: 4})
	u.Add(Usage{PromptTokens: 30, CompletionTokens: 3, TotalTokens: 33, CachedTokens: 6})
	want := Usage{PromptTokens: 40, CompletionTokens: 5, TotalTokens: 45, CachedTokens: 10}
	if u != want {
		t.Errorf("u = %+v, want %+v", u, want)
	}
	if u.CacheHitRate() != 25 {
		t.Errorf("CacheHitRate = %v, want 25", u.CacheHitRate())
	}
}
