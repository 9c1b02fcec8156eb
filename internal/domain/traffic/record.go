package traffic

// Record is one observed request/response exchange. Request and Response hold
// the parsed payload when the body was structured data, the raw body text
// when parsing failed, or nil when the exchange carried no body.
type Record struct {
	Method   string `json:"method"`
	URL      string `json:"url"`
	Status   int    `json:"status"`
	Request  any    `json:"request,omitempty"`
	Response any    `json:"response,omitempty"`
}
