package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/docgen"
)

func newTestServer() *Server {
	s := NewServerWithIO(nil, nil, WithVersion("test"))
	gen := docgen.New(
		docgen.WithClock(carteira.FixedClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))),
		docgen.WithIDGenerator(func() string { return "doc-7" }),
	)
	RegisterDefaultTools(s, gen)
	RegisterDefaultResources(s)
	return s
}

func sendRequest(t *testing.T, s *Server, method string, id int, params any) jsonrpcResponse {
	t.Helper()

	req := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		req["params"] = params
	}

	reqBytes, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	reqBytes = append(reqBytes, '\n')

	var output bytes.Buffer
	s.input = bytes.NewReader(reqBytes)
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshaling response %q: %v", output.String(), err)
	}
	return resp
}

// callTool invokes a tool and decodes its result.
func callTool(t *testing.T, s *Server, name string, args any) ToolResult {
	t.Helper()
	resp := sendRequest(t, s, "tools/call", 10, map[string]any{"name": name, "arguments": args})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	raw, _ := json.Marshal(resp.Result)
	var result ToolResult
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decoding tool result: %v", err)
	}
	return result
}

func TestServerInitialize(t *testing.T) {
	s := newTestServer()

	resp := sendRequest(t, s, "initialize", 1, map[string]any{
		"protocolVersion": ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      map[string]any{"name": "test", "version": "1.0"},
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatal("result is not a map")
	}
	if result["protocolVersion"] != ProtocolVersion {
		t.Fatalf("unexpected protocol version: %v", result["protocolVersion"])
	}
	serverInfo, ok := result["serverInfo"].(map[string]any)
	if !ok {
		t.Fatal("missing serverInfo")
	}
	if serverInfo["name"] != ServerName || serverInfo["version"] != "test" {
		t.Fatalf("unexpected server info: %v", serverInfo)
	}
}

func TestServerToolsList(t *testing.T) {
	s := newTestServer()

	resp := sendRequest(t, s, "tools/list", 2, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}

	result := resp.Result.(map[string]any)
	tools, ok := result["tools"].([]any)
	if !ok {
		t.Fatal("tools is not an array")
	}

	var names []string
	for _, tool := range tools {
		tm := tool.(map[string]any)
		names = append(names, tm["name"].(string))
		if _, ok := tm["inputSchema"].(map[string]any); !ok {
			t.Errorf("tool %v has no input schema", tm["name"])
		}
	}
	want := []string{
		"build_carteira_document", "build_ficha_document", "export_carteira_pdf",
		"export_ficha_pdf", "format_fields", "parse_qr_payload", "render_document_template",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("tools = %v, want %v (sorted)", names, want)
	}
}

func TestServerResources(t *testing.T) {
	s := newTestServer()

	resp := sendRequest(t, s, "resources/list", 3, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	resources := resp.Result.(map[string]any)["resources"].([]any)
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}

	resp = sendRequest(t, s, "resources/read", 4, map[string]any{"uri": "carteira://runtime/machine"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	contents := resp.Result.(map[string]any)["contents"].([]any)
	text := contents[0].(map[string]any)["text"].(string)
	for _, key := range []string{`"print"`, `"download+toolbar"`, `"exportFailed"`} {
		if !strings.Contains(text, key) {
			t.Errorf("machine resource missing %s", key)
		}
	}

	resp = sendRequest(t, s, "resources/read", 5, map[string]any{"uri": "carteira://schema/member"})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
	text = resp.Result.(map[string]any)["contents"].([]any)[0].(map[string]any)["text"].(string)
	if !strings.Contains(text, `"estadoCivil"`) || !strings.Contains(text, `"nomeAssinante"`) {
		t.Fatalf("schema resource missing fields: %s", text)
	}

	resp = sendRequest(t, s, "resources/read", 6, map[string]any{"uri": "carteira://nope"})
	if resp.Error == nil {
		t.Fatal("expected error for unknown resource")
	}
}

func TestServerPing(t *testing.T) {
	resp := sendRequest(t, newTestServer(), "ping", 4, nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error.Message)
	}
}

func TestServerUnknownMethod(t *testing.T) {
	resp := sendRequest(t, newTestServer(), "nonexistent/method", 5, nil)
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected error code %d, got %d", codeMethodNotFound, resp.Error.Code)
	}
}

func TestServerNotificationHasNoResponse(t *testing.T) {
	s := newTestServer()
	var output bytes.Buffer
	s.input = strings.NewReader(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if output.Len() != 0 {
		t.Fatalf("unexpected response to notification: %s", output.String())
	}
}

func TestServerParseError(t *testing.T) {
	s := newTestServer()
	var output bytes.Buffer
	s.input = strings.NewReader("{not json\n")
	s.output = &output

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	var resp jsonrpcResponse
	if err := json.Unmarshal(output.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Fatalf("expected parse error, got %+v", resp)
	}
}

func TestServerUnknownTool(t *testing.T) {
	resp := sendRequest(t, newTestServer(), "tools/call", 6, map[string]any{
		"name":      "nonexistent_tool",
		"arguments": map[string]any{},
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestBuildCarteiraTool(t *testing.T) {
	result := callTool(t, newTestServer(), "build_carteira_document", map[string]any{
		"members":  []any{map[string]any{"nome": "Maria Silva", "cpf": "12345678901"}},
		"settings": map[string]any{"nomeIgreja": "Igreja Central"},
		"export":   map[string]any{"mode": "download"},
	})
	if result.IsError {
		t.Fatalf("tool error: %v", result.Content)
	}
	html := result.Content[0].Text
	for _, want := range []string{"<!DOCTYPE html>", "Maria Silva", "123.456.789-01", "Igreja Central", "jspdf"} {
		if !strings.Contains(html, want) {
			t.Errorf("document missing %q", want)
		}
	}
}

func TestBuildCarteiraToolRejectsMode(t *testing.T) {
	result := callTool(t, newTestServer(), "build_carteira_document", map[string]any{
		"members": []any{map[string]any{"nome": "Maria"}},
		"export":  map[string]any{"mode": "fax"},
	})
	if !result.IsError {
		t.Fatal("expected tool error for invalid mode")
	}
}

func TestBuildCarteiraToolRequiresMembers(t *testing.T) {
	result := callTool(t, newTestServer(), "build_carteira_document", map[string]any{})
	if !result.IsError || !strings.Contains(result.Content[0].Text, "no member records") {
		t.Fatalf("expected missing members error, got %+v", result)
	}
}

func TestBuildFichaToolToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "fichas.html")
	result := callTool(t, newTestServer(), "build_ficha_document", map[string]any{
		"members":     []any{map[string]any{"nome": "Maria"}},
		"generatedBy": "secretaria",
		"outputPath":  out,
	})
	if result.IsError {
		t.Fatalf("tool error: %v", result.Content)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), "Documento doc-7") {
		t.Fatal("footer missing document id")
	}
}

func TestExportPDFTools(t *testing.T) {
	s := newTestServer()
	for _, name := range []string{"export_carteira_pdf", "export_ficha_pdf"} {
		result := callTool(t, s, name, map[string]any{
			"members": []any{map[string]any{"nome": "Maria", "estadoCivil": "casada"}},
		})
		if result.IsError {
			t.Fatalf("%s: tool error: %v", name, result.Content)
		}
		if len(result.Content) != 2 {
			t.Fatalf("%s: expected text and resource blocks, got %d", name, len(result.Content))
		}
		pdf, err := base64.StdEncoding.DecodeString(result.Content[1].Data)
		if err != nil {
			t.Fatalf("%s: decoding base64: %v", name, err)
		}
		if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
			t.Fatalf("%s: result is not a PDF", name)
		}
	}
}

func TestParseQRTool(t *testing.T) {
	s := newTestServer()
	result := callTool(t, s, "parse_qr_payload", map[string]any{
		"payload": `{"v":1,"data":{"nome":"Maria","id":"0042"}}`,
	})
	if result.IsError {
		t.Fatalf("tool error: %v", result.Content)
	}
	if !strings.Contains(result.Content[0].Text, `"nome": "Maria"`) {
		t.Fatalf("unexpected output: %s", result.Content[0].Text)
	}

	result = callTool(t, s, "parse_qr_payload", map[string]any{"payload": "https://example.com"})
	if !result.IsError {
		t.Fatal("expected error for non-card payload")
	}
}

func TestFormatFieldsTool(t *testing.T) {
	result := callTool(t, newTestServer(), "format_fields", map[string]any{
		"cpf":  "12345678901",
		"date": "2024-01-05",
	})
	var out map[string]string
	if err := json.Unmarshal([]byte(result.Content[0].Text), &out); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if out["cpf"] != "123.456.789-01" || out["dateShort"] != "05/01/2024" {
		t.Fatalf("unexpected output: %v", out)
	}
	if _, ok := out["phone"]; ok {
		t.Fatal("phone should be absent when not requested")
	}
}

func TestRenderTemplateTool(t *testing.T) {
	result := callTool(t, newTestServer(), "render_document_template", map[string]any{
		"template": map[string]any{
			"title": "Cartão",
			"pages": []any{map[string]any{
				"frame": map[string]any{"width": 160, "height": 100, "cutMarks": true},
				"elements": []any{
					map[string]any{"type": "rect", "width": 80, "height": 100, "radius": 3, "border": true},
					map[string]any{"type": "field", "x": 40, "y": 30, "width": 36, "label": "Nome", "text": "Maria"},
				},
			}},
		},
	})
	if result.IsError {
		t.Fatalf("tool error: %v", result.Content)
	}
	pdf, _ := base64.StdEncoding.DecodeString(result.Content[1].Data)
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Fatal("result is not a PDF")
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	s := newTestServer()
	s.input = strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	s.output = &bytes.Buffer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); err != context.Canceled {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
}
