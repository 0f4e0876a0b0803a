package mock

import (
	"time"

	"github.com/hivekrb/hivekrb/core"
)

type resultStreamConfig struct {
	nextSleep time.Duration
	meta      *core.Meta
	header    core.Header
	failAt    int
}

type ResultStreamOption func(*resultStreamConfig)

func ResultStreamWithNextSleep(s time.Duration) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.nextSleep = s
	}
}

func ResultStreamWithMeta(meta *core.Meta) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.meta = meta
	}
}

func ResultStreamWithHeader(header core.Header) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.header = header
	}
}

// ResultStreamWithErrorAt makes Next fail once index rows were consumed.
func ResultStreamWithErrorAt(index int) ResultStreamOption {
	return func(c *resultStreamConfig) {
		c.failAt = index
	}
}
