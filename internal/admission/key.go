package admission

import "fmt"

// BucketKey builds the composite registry key for one scoped identity.
func BucketKey(operationKey string, scope Scope, identifier string) string {
	return fmt.Sprintf("%s:%s:%s", operationKey, scope, identifier)
}

// ResolveIdentifier picks the identifier usage is counted against for
// the given scope. Channel and guild scopes fall back to the actor id
// when their container id is unavailable.
func ResolveIdentifier(scope Scope, actorID, channelID, guildID string) string {
	switch scope {
	case ScopeChannel:
		if channelID != "" {
			return channelID
		}
	case ScopeGuild:
		if guildID != "" {
			return guildID
		}
	}
	return actorID
}
