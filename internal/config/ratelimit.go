package config

import "time"

// RateLimitConfig configures the Redis token bucket.
type RateLimitConfig struct {
	Enabled        bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" env-default:"60"`
	RefillTokens   int           `env:"RATE_LIMIT_REFILL_TOKENS" env-default:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" env-default:"1s"`
	TTL            time.Duration `env:"RATE_LIMIT_TTL" env-default:"10m"`
	KeyStrategy    string        `env:"RATE_LIMIT_KEY_STRATEGY" env-default:"ip_user_route"`
	Prefix         string        `env:"RATE_LIMIT_PREFIX" env-default:"rl"`
	Debug          bool          `env:"RATE_LIMIT_DEBUG" env-default:"false"`
	Burst          int           `env:"RATE_LIMIT_BURST" env-default:"-1"`
	RefillEvery    time.Duration `env:"RATE_LIMIT_REFILL_EVERY" env-default:"0s"`

	// Booking creation and payment orders share a smaller bucket per client.
	CheckoutCapacity       int           `env:"RATE_LIMIT_CHECKOUT_CAPACITY" env-default:"5"`
	CheckoutRefillInterval time.Duration `env:"RATE_LIMIT_CHECKOUT_REFILL_INTERVAL" env-default:"12s"`
}

// Checkout derives the bucket guarding booking and payment-order writes.
// It is keyed per client only so both routes draw on the same tokens.
func (c RateLimitConfig) Checkout() RateLimitConfig {
	out := c
	out.Capacity = c.CheckoutCapacity
	out.RefillTokens = 1
	out.RefillInterval = c.CheckoutRefillInterval
	out.KeyStrategy = "ip_user"
	out.Prefix = c.Prefix + ":checkout"
	out.Burst = 0
	out.RefillEvery = 0
	return out.Normalize()
}

// Normalize applies the burst/refill-every shorthands and clamps values so the
// limiter script never sees a zero capacity or interval.
func (c RateLimitConfig) Normalize() RateLimitConfig {
	if c.Burst > 0 {
		c.Capacity = c.Burst
	}
	if c.RefillEvery > 0 {
		c.RefillTokens = 1
		c.RefillInterval = c.RefillEvery
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
