// Package llm содержит провайдеров генерации текста.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/HysterChat/pinco-clone/internal/domain"
)

const (
	defaultTimeout     = 45 * time.Second
	defaultTemperature = 1.5
)

// checkReply приводит ответ и ошибку к единому виду.
func checkReply(provider, text string, err error, opts domain.GenerateOptions) (string, error) {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s: timeout", domain.ErrUpstreamUnavailable, provider)
		}
		return "", fmt.Errorf("%w: %s: %v", domain.ErrUpstreamUnavailable, provider, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: %s: empty reply", domain.ErrUpstreamUnavailable, provider)
	}
	if opts.MinChars > 0 && len(text) < opts.MinChars {
		return "", fmt.Errorf("%w: %s: reply too short (%d chars)", domain.ErrUpstreamUnavailable, provider, len(text))
	}
	return text, nil
}

func temperatureOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
