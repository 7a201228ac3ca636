package model

import "strings"

// ============================================================================
// Platform (카탈로그 데이터 플랫폼)
// ============================================================================

// Platform - 카탈로그의 데이터 플랫폼 식별자
type Platform string

const (
	PlatformBigQuery  Platform = "BIGQUERY"
	PlatformRedshift  Platform = "REDSHIFT"
	PlatformSnowflake Platform = "SNOWFLAKE"
)

// connectionTypePlatforms - Monte Carlo warehouse connectionType -> Platform
// 테이블 인벤토리와 모니터 상관분석이 같은 테이블을 사용한다.
var connectionTypePlatforms = map[string]Platform{
	"BIGQUERY":  PlatformBigQuery,
	"REDSHIFT":  PlatformRedshift,
	"SNOWFLAKE": PlatformSnowflake,
}

// ParsePlatform - connectionType 문자열을 Platform으로 변환
// 지원하지 않는 값이면 ok=false
func ParsePlatform(connectionType string) (Platform, bool) {
	p, ok := connectionTypePlatforms[strings.ToUpper(strings.TrimSpace(connectionType))]
	return p, ok
}

// URNName - dataPlatform URN에 사용하는 소문자 이름 (예: snowflake)
func (p Platform) URNName() string {
	return strings.ToLower(string(p))
}

// ============================================================================
// PlatformMap (mcon -> Platform)
// ============================================================================

// PlatformMap is the read-only mcon -> platform lookup built by the table
// inventory. The zero value is an empty map.
type PlatformMap struct {
	entries map[string]Platform
}

// NewPlatformMap copies entries so later writes to the source map are not visible.
func NewPlatformMap(entries map[string]Platform) PlatformMap {
	m := make(map[string]Platform, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return PlatformMap{entries: m}
}

func (m PlatformMap) Lookup(mcon string) (Platform, bool) {
	p, ok := m.entries[mcon]
	return p, ok
}

func (m PlatformMap) Len() int {
	return len(m.entries)
}

// Entries returns a copy of the underlying mapping.
func (m PlatformMap) Entries() map[string]Platform {
	out := make(map[string]Platform, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}

// Equal reports whether both maps hold the same keys with the same platforms.
func (m PlatformMap) Equal(other PlatformMap) bool {
	if len(m.entries) != len(other.entries) {
		return false
	}
	for k, v := range m.entries {
		if ov, ok := other.entries[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
