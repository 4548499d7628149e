package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// FinanceKPIKey returns the cache key for the KPI snapshot of a reference month
// ("MM/YYYY").
func (r *CacheKeyStruct) FinanceKPIKey(referenceMonth string) string {
	return fmt.Sprintf("finance:kpis:%s", referenceMonth)
}

// FinanceEventsChannel returns the Redis PubSub channel name for payment events.
func (r *CacheKeyStruct) FinanceEventsChannel() string {
	return "finance:events"
}

var CacheKey = NewCacheKeyStruct()
