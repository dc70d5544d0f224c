package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LoginSessionKey returns the cache key holding the token ID of a user's active login.
func (r *CacheKeyStruct) LoginSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// AssessmentSessionKey returns the cache key for a user's in-progress questionnaire.
func (r *CacheKeyStruct) AssessmentSessionKey(userID int) string {
	return fmt.Sprintf("user:%d:assessment", userID)
}

var CacheKey = NewCacheKeyStruct()
