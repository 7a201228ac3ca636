package model

import "fmt"

// 카탈로그 URN 규칙 (DataHub 호환)
//
//	dataset:   urn:li:dataset:(urn:li:dataPlatform:<platform>,<name>,<ENV>)
//	assertion: urn:li:assertion:<id>
//	incident:  urn:li:incident:<id>

const (
	EntityTypeDataset   = "dataset"
	EntityTypeAssertion = "assertion"
	EntityTypeIncident  = "incident"

	DefaultEnv = "PROD"
)

func MakeDataPlatformURN(p Platform) string {
	return fmt.Sprintf("urn:li:dataPlatform:%s", p.URNName())
}

func MakeDatasetURN(p Platform, name, env string) string {
	if env == "" {
		env = DefaultEnv
	}
	return fmt.Sprintf("urn:li:dataset:(%s,%s,%s)", MakeDataPlatformURN(p), name, env)
}

func MakeAssertionURN(id string) string {
	return fmt.Sprintf("urn:li:assertion:%s", id)
}

func MakeIncidentURN(id string) string {
	return fmt.Sprintf("urn:li:incident:%s", id)
}
