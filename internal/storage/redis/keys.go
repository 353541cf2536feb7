package redis

import "fmt"

// Key prefix for all client state
const keyPrefix = "quizctl"

// stateKey returns the Redis key for a stored value
func stateKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, namespace, key)
}
