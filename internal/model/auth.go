package model

// AuthUser - 검증된 API 토큰의 주체
type AuthUser struct {
	Subject string
}

// TokenResponse - `dqsync token` 출력 구조체
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}
