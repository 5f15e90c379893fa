package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// AssessmentKey returns the cache key for a published assessment document
func (r *CacheKeyStruct) AssessmentKey(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:doc", assessmentID)
}

// AssessmentMonitorChannel returns the Redis PubSub channel name for an
// assessment's live attempt monitor
func (r *CacheKeyStruct) AssessmentMonitorChannel(assessmentID string) string {
	return fmt.Sprintf("assessment:%s:monitor", assessmentID)
}

var CacheKey = NewCacheKeyStruct()
