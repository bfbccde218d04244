package db

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is one attempt at a database write.
type Operation func() error

// Retryable decides whether a failed attempt should be repeated.
type Retryable func(err error) bool

const DefaultMaxRetries = 3

// Try runs op, retrying duplicate key and transient network failures.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, func(err error) bool {
		return IsMongoDuplicateKeyError(err) || IsMongoTransientError(err)
	})
}

// WithRetries runs op once plus up to maxRetries more times while retryable
// accepts the error, sleeping 50ms, 100ms, 150ms... between attempts.
func WithRetries(op Operation, maxRetries int, retryable Retryable) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if attempt == maxRetries || !retryable(err) {
			return err
		}
		time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
	}
	return err
}

// IsMongoDuplicateKeyError reports a write rejected with code 11000, which is
// what a lost upsert race returns.
func IsMongoDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err) || hasWriteCode(err, 11000)
}

// IsMongoTransientError reports network failures and timeouts.
func IsMongoTransientError(err error) bool {
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

func hasWriteCode(err error, code int) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == code {
				return true
			}
		}
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) {
		for _, e := range bwe.WriteErrors {
			if e.Code == code {
				return true
			}
		}
	}
	return false
}
