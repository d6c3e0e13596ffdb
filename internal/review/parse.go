package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ErrUnparseable is returned by ParseCombined when the reply does not hold a
// usable review+commit object.
var ErrUnparseable = errors.New("review: unparseable reply")

// decodeResult extracts a Result from raw and reports why it could not.
func decodeResult(raw string) (Result, error) {
	var res Result
	if err := decodeObject(raw, &res); err != nil {
		return Result{}, err
	}
	res.normalize()
	return res, nil
}

// Parse extracts a Result from raw. It never fails: any problem is logged
// and Default is returned with ok set to false.
func Parse(raw string, logger *zap.Logger) (res Result, ok bool) {
	if logger == nil {
		logger = zap.NewNop()
	}

	res, err := decodeResult(raw)
	if err != nil {
		logger.Error("failed to parse code review response",
			zap.Error(err),
			zap.Int("responseLength", len(raw)),
		)
		return Default(), false
	}

	logger.Info("code review completed",
		zap.Bool("passed", res.Passed),
		zap.String("severity", string(res.Severity)),
		zap.Int("issues", len(res.Issues)),
	)
	return res, true
}

// ParseCombined extracts a Combined reply. Unlike Parse it reports failure,
// including a reply whose commit message is empty.
func ParseCombined(raw string) (Combined, error) {
	var c Combined
	if err := decodeObject(raw, &c); err != nil {
		return Combined{}, fmt.Errorf("%w: %w", ErrUnparseable, err)
	}
	c.CommitMessage = strings.TrimSpace(c.CommitMessage)
	if c.CommitMessage == "" {
		return Combined{}, fmt.Errorf("%w: missing commitMessage", ErrUnparseable)
	}
	c.normalize()
	return c, nil
}

// extractJSON trims raw and, when it contains a markdown fence, keeps the
// span from the first '{' to the last '}'. Braces inside string values can
// defeat this; the model is told to emit nothing but the object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.Contains(s, "```") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return s
	}
	return s[start : end+1]
}

func decodeObject(raw string, v any) error {
	s := extractJSON(raw)
	if s == "" {
		return errors.New("empty response")
	}
	if !gjson.Valid(s) {
		return errors.New("invalid JSON")
	}
	if !gjson.Parse(s).IsObject() {
		return errors.New("JSON is not an object")
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("decoding review: %w", err)
	}
	return nil
}
