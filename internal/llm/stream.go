package llm

import (
	"bufio"
	"context"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxSSELine = 1024 * 1024

// ChunkFunc receives each non-empty text delta in arrival order.
type ChunkFunc func(text string)

// Stream sends msgs with streaming enabled and invokes onChunk for every
// text delta. It returns the accumulated content.
//
// Cancellation, either from ctx or from opts.MaxWait, stops the stream
// between chunks and is not an error: the content received so far is
// returned with a nil error and no further chunk is delivered.
func (c *Client) Stream(ctx context.Context, msgs []Message, onChunk ChunkFunc, opts CallOptions) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.maxWait())
	defer cancel()

	payload, err := c.marshalRequest(msgs, true)
	if err != nil {
		return Result{}, err
	}

	c.logger.Debug("chat completion request",
		zap.String("model", c.model),
		zap.Int("messages", len(msgs)),
		zap.Bool("stream", true),
	)

	resp, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	var (
		content strings.Builder
		usage   *Usage
		chunks  int
	)
	partial := func() Result {
		return Result{Content: content.String(), Interrupted: true}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELine)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			break
		}
		if !gjson.Valid(data) {
			c.logger.Debug("skipping malformed stream chunk", zap.Int("length", len(data)))
			continue
		}

		// Nothing is applied once the call has been cancelled.
		if ctx.Err() != nil {
			c.logger.Debug("stream stopped", zap.Int("chunks", chunks), zap.Error(ctx.Err()))
			return partial(), nil
		}

		chunk := gjson.Parse(data)
		if text := chunk.Get("choices.0.delta.content").String(); text != "" {
			content.WriteString(text)
			chunks++
			if onChunk != nil {
				onChunk(text)
			}
		}
		if u, ok := normalizeUsage(chunk.Get("usage")); ok {
			usage = &u
		}
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("stream stopped", zap.Int("chunks", chunks), zap.Error(ctx.Err()))
			return partial(), nil
		}
		return Result{Content: content.String()}, transportError(err)
	}
	if ctx.Err() != nil {
		return partial(), nil
	}

	res := Result{Content: content.String(), Usage: usage}
	if usage != nil {
		c.record(*usage)
	}
	c.logger.Debug("chat completion stream finished",
		zap.Int("chunks", chunks),
		zap.Int("contentLength", content.Len()),
		zap.Bool("hasUsage", usage != nil),
	)
	return res, nil
}
