package model

import "time"

const DefaultActor = "urn:li:corpuser:datahub"

// AuditStamp - 변경 시각과 주체
type AuditStamp struct {
	Time    int64  `json:"time"` // epoch millis
	Actor   string `json:"actor"`
	Message string `json:"message,omitempty"`
}

func NewAuditStamp(t time.Time, actor, message string) AuditStamp {
	if actor == "" {
		actor = DefaultActor
	}
	return AuditStamp{Time: t.UnixMilli(), Actor: actor, Message: message}
}
