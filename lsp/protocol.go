package lsp

import "encoding/json"

// jsonrpcRequest is a JSON-RPC 2.0 request frame.
type jsonrpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// jsonrpcNotification is a JSON-RPC 2.0 notification frame (no id).
type jsonrpcNotification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// jsonrpcError is the error object carried by a response or sent back for
// an unhandled server-to-client request.
type jsonrpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// errMethodNotFound answers a server-to-client request this core doesn't
// implement, per the JSON-RPC -32601 convention.
const errMethodNotFound = -32601

// inboundProbe is used to classify an inbound frame by shape before
// decoding it fully: response (has id + result/error), notification (has
// method, no id), or server-to-client request (has method and id).
type inboundProbe struct {
	ID     *int64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

func (p *inboundProbe) isResponse() bool {
	return p.ID != nil && (len(p.Result) > 0 || len(p.Error) > 0)
}

func (p *inboundProbe) isServerRequest() bool {
	return p.ID != nil && p.Method != ""
}

func (p *inboundProbe) isNotification() bool {
	return p.ID == nil && p.Method != ""
}

// publishDiagnosticsParams mirrors the wire shape of
// textDocument/publishDiagnostics params, decoded loosely: any
// missing or mistyped field is treated as absent, never fatal.
type publishDiagnosticsParams struct {
	URI         string               `json:"uri"`
	Diagnostics []wireDiagnosticItem `json:"diagnostics"`
}

type wireDiagnosticItem struct {
	Range    wireRange `json:"range"`
	Severity *int      `json:"severity"`
	Message  string    `json:"message"`
}

type wireRange struct {
	Start wirePosition `json:"start"`
	End   wirePosition `json:"end"`
}

type wirePosition struct {
	Line      uint32 `json:"line"`
	Character uint32 `json:"character"`
}

func decodePublishDiagnostics(raw json.RawMessage) (FileDiagnostics, error) {
	var params publishDiagnosticsParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return FileDiagnostics{}, err
	}
	path, err := URIToPath(params.URI)
	if err != nil {
		return FileDiagnostics{}, err
	}

	diags := make([]Diagnostic, 0, len(params.Diagnostics))
	for _, d := range params.Diagnostics {
		sev := 0
		if d.Severity != nil {
			sev = *d.Severity
		}
		diags = append(diags, Diagnostic{
			StartLine: d.Range.Start.Line,
			StartCol:  d.Range.Start.Character,
			EndLine:   d.Range.End.Line,
			EndCol:    d.Range.End.Character,
			Severity:  SeverityFromLSP(sev),
			Message:   d.Message,
		})
	}
	return FileDiagnostics{Path: path, Diagnostics: diags}, nil
}
