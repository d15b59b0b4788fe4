package repository

import (
	"context"
	"encoding/json"
	"sort"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"
	"delegation-service/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Redis hashes holding the legacy copies, field = record id, value = JSON
const (
	LegacyMembersKey     = "legacy:members"
	LegacyDelegationsKey = "legacy:delegations"
)

// legacyMember accepts every key name the older clients wrote
type legacyMember struct {
	entity.Member
	DelegationIDCamel string `json:"delegationID,omitempty"`
	DelegationRef     string `json:"delegation,omitempty"`
}

// RedisLegacyCache reads the older key-value copy of members and delegations
type RedisLegacyCache struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisLegacyCache creates a legacy cache reader
func NewRedisLegacyCache(client *redis.Client, logger logger.Logger) repository.LegacyCache {
	return &RedisLegacyCache{
		client: client,
		logger: logger,
	}
}

// Members returns legacy members ordered by id. Undecodable records are skipped.
func (c *RedisLegacyCache) Members(ctx context.Context) ([]entity.Member, error) {
	values, err := c.client.HGetAll(ctx, LegacyMembersKey).Result()
	if err != nil {
		return nil, err
	}

	members := make([]entity.Member, 0, len(values))
	for _, id := range sortedKeys(values) {
		member, ok := c.decodeMember(id, values[id])
		if ok {
			members = append(members, member)
		}
	}
	return members, nil
}

func (c *RedisLegacyCache) decodeMember(id, raw string) (entity.Member, bool) {
	var rec legacyMember
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		c.logger.Warn("Skipping undecodable legacy member", "memberID", id, "error", err)
		return entity.Member{}, false
	}

	member := rec.Member
	if member.ID == "" {
		member.ID = id
	}
	// older clients stored the reference under yet other names
	if member.LegacyDelegationID == "" {
		if rec.DelegationIDCamel != "" {
			member.LegacyDelegationID = rec.DelegationIDCamel
		} else {
			member.LegacyDelegationID = rec.DelegationRef
		}
	}
	return member, true
}

// Delegations returns legacy delegations ordered by id
func (c *RedisLegacyCache) Delegations(ctx context.Context) ([]entity.Delegation, error) {
	values, err := c.client.HGetAll(ctx, LegacyDelegationsKey).Result()
	if err != nil {
		return nil, err
	}

	delegations := make([]entity.Delegation, 0, len(values))
	for _, id := range sortedKeys(values) {
		var delegation entity.Delegation
		if err := json.Unmarshal([]byte(values[id]), &delegation); err != nil {
			c.logger.Warn("Skipping undecodable legacy delegation", "delegationID", id, "error", err)
			continue
		}
		if delegation.ID == "" {
			delegation.ID = id
		}
		delegations = append(delegations, delegation)
	}
	return delegations, nil
}

// hash field order is random; sort for a deterministic snapshot
func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
