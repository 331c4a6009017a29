package cache

import "strings"

const (
	GlobalKeyPrefix = "missiondesk"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// FinalReportKey caches the generated report of (exam, account).
func FinalReportKey(examID, accountID string) string {
	return GenerateCacheKey("report", "final", examID, accountID)
}

// FinalReportLockKey guards a running verdict generation for (exam, account).
func FinalReportLockKey(examID, accountID string) string {
	return GenerateCacheKey("report", "lock", examID, accountID)
}

// AnswerDraftKey is the hash holding one account's drafts for an exam, one field per task.
func AnswerDraftKey(accountID, examID string) string {
	return GenerateCacheKey("draft", "answer", accountID, examID)
}

// RevokedTokenKey marks a logged-out token ID.
func RevokedTokenKey(jti string) string {
	return GenerateCacheKey("auth", "revoked", jti)
}
