package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	UserKeyPrefix    = "user:%d"
	CountriesKey     = "countries:all"
	CountryKeyPrefix = "countries:name:%s"
)

const (
	UserTTL    = 5 * time.Minute
	CountryTTL = 6 * time.Hour
)

// Key families label cache metrics.
const (
	FamilyUser    = "user"
	FamilyCountry = "country"
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func CountryKey(name string) string {
	return fmt.Sprintf(CountryKeyPrefix, strings.ToLower(strings.TrimSpace(name)))
}

func (c *Cache) InvalidateUser(ctx context.Context, userID uint) {
	c.Invalidate(ctx, UserKey(userID))
}
