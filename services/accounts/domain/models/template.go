package models

import "encoding/json"

// TemplateInfo is what accounts needs to know about a catalog template to
// deploy it.
type TemplateInfo struct {
	ID            int64
	ProductID     int64
	ProductName   string
	DefaultValues json.RawMessage
	ValuesSchema  json.RawMessage
}
