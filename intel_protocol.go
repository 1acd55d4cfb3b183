// complete/intel_protocol.go
// Wire structures for the code-intelligence server protocol and the
// normalization of raw per-language records into the uniform Candidate model.
package complete

// ============================================================================
// Wire Structures
// ============================================================================

// completeParams is the request payload sent with a profile's command.
type completeParams struct {
	File    string `json:"file"`
	Offset  int    `json:"offset"`
	Prefix  string `json:"prefix,omitempty"`
	Content string `json:"content,omitempty"`
}

// completionRecord is one raw per-language candidate as the server reports
// it. Field presence varies by provider; absent fields decode to "".
type completionRecord struct {
	Kind       string `json:"kind,omitempty"`
	Completion string `json:"completion"`
	Menu       string `json:"menu,omitempty"`
	Info       string `json:"info,omitempty"`
	Doc        string `json:"doc,omitempty"`
}

// completeResult is the reply payload.
type completeResult struct {
	Completions []completionRecord `json:"completions"`
}

// JSON-RPC standard error codes the client distinguishes.
const (
	jsonRpcParseError     int64 = -32700
	jsonRpcMethodNotFound int64 = -32601
	jsonRpcInternalError  int64 = -32603
)

// ============================================================================
// Record Normalization
// ============================================================================

// newCandidate normalizes a raw record into the uniform model. The profile's
// label field decides which record field becomes the menu entry key; an
// empty selection falls back to the insertion text so every candidate stays
// addressable.
func newCandidate(rec completionRecord, prof Profile) Candidate {
	label := rec.Menu
	if prof.Label == LabelFieldInfo && rec.Info != "" {
		label = rec.Info
	}
	if label == "" {
		label = rec.Completion
	}
	doc := rec.Doc
	if doc == "" && prof.Label != LabelFieldInfo {
		doc = rec.Info
	}
	return Candidate{
		Kind:          rec.Kind,
		InsertionText: rec.Completion,
		Label:         label,
		Detail:        rec.Menu,
		Documentation: doc,
	}
}
