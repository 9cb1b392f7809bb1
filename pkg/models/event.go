package models

import "time"

// PageEvent is one page or network observation produced by the browser
// collectors. Fields carries the evidence the policy engine reads by name
// (hasLogin, cookieCount, hasSensitiveData, ...).
type PageEvent struct {
	Timestamp time.Time              `json:"@timestamp"`
	Domain    string                 `json:"domain"`
	URL       string                 `json:"url,omitempty"`
	TabID     string                 `json:"tab_id,omitempty"`
	Source    string                 `json:"source,omitempty"`
	Fields    map[string]interface{} `json:"fields"`
}

// Field returns a named evidence value, or nil when absent.
func (e *PageEvent) Field(name string) interface{} {
	if e == nil || e.Fields == nil {
		return nil
	}
	return e.Fields[name]
}

// BoolField returns a boolean evidence value; missing or mistyped
// fields read as false.
func (e *PageEvent) BoolField(name string) bool {
	v, _ := e.Field(name).(bool)
	return v
}

// Context projects the event's evidence into a policy context.
func (e *PageEvent) Context() PolicyContext {
	ctx := make(PolicyContext, len(e.Fields)+2)
	for k, v := range e.Fields {
		ctx[k] = v
	}
	ctx["domain"] = e.Domain
	if e.URL != "" {
		ctx["url"] = e.URL
	}
	return ctx
}
