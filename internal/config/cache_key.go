package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key holding the active login JTI for a user.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// UserQuizKey returns the cache key for a user's stashed quiz.
func (r *CacheKeyStruct) UserQuizKey(userID int) string {
	return fmt.Sprintf("user:%d:quiz", userID)
}

var CacheKey = NewCacheKeyStruct()
