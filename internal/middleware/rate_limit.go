package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Token bucket evaluated atomically in redis. Capacity is 2*qps, refill rate
// qps tokens per second.
const rateLimitScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])

if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

local elapsed = math.max(0, now - updated_at)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_after = 0

if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
else
    retry_after = (1 - tokens) / rate
end

redis.call('HMSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, 3600)

return {allowed, math.ceil(retry_after)}
`

// RateLimit throttles per client IP. It fails open: a redis outage must not
// take the auth endpoints down with it.
func RateLimit(client *redis.Client, qps int, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "rate_limit:" + c.ClientIP()
		capacity := 2 * qps
		now := float64(time.Now().UnixNano()) / 1e9

		result, err := client.Eval(
			c.Request.Context(),
			rateLimitScript,
			[]string{key},
			capacity, qps, now,
		).Result()
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		arr, ok := result.([]any)
		if !ok || len(arr) < 2 {
			c.Next()
			return
		}

		allowed, _ := arr[0].(int64)
		if allowed == 1 {
			c.Next()
			return
		}

		retryAfter, _ := arr[1].(int64)
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too_many_requests"})
	}
}
