package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/docgen"
	"github.com/lvillar/carteira/doctpl"
	"github.com/lvillar/carteira/format"
	"github.com/lvillar/carteira/member"
	"github.com/lvillar/carteira/qrpayload"
)

// Generator produces documents. *docgen.Service satisfies it.
type Generator interface {
	CarteirasHTML(ctx context.Context, req docgen.CarteiraRequest) (*docgen.Result, error)
	CarteirasPDF(ctx context.Context, req docgen.CarteiraRequest) (*docgen.Result, error)
	FichasHTML(ctx context.Context, req docgen.FichaRequest) (*docgen.Result, error)
	FichasPDF(ctx context.Context, req docgen.FichaRequest) (*docgen.Result, error)
}

// RegisterDefaultTools adds the document tools backed by gen.
func RegisterDefaultTools(s *Server, gen Generator) {
	s.AddTool(buildCarteiraTool(gen))
	s.AddTool(buildFichaTool(gen))
	s.AddTool(exportCarteiraPDFTool(gen))
	s.AddTool(exportFichaPDFTool(gen))
	s.AddTool(parseQRTool())
	s.AddTool(formatFieldsTool())
	s.AddTool(renderTemplateTool())
}

type exportArgs struct {
	Mode     string `json:"mode"`
	Toolbar  bool   `json:"toolbar"`
	Title    string `json:"title"`
	FileName string `json:"fileName"`
}

func (e exportArgs) options() ([]carteira.Option, error) {
	var opts []carteira.Option
	if e.Mode != "" {
		m := carteira.Mode(e.Mode)
		if !m.Valid() {
			return nil, fmt.Errorf("%w: %q", carteira.ErrInvalidMode, e.Mode)
		}
		opts = append(opts, carteira.WithMode(m))
	}
	if e.Toolbar {
		opts = append(opts, carteira.WithToolbar(true))
	}
	if e.Title != "" {
		opts = append(opts, carteira.WithTitle(e.Title))
	}
	if e.FileName != "" {
		opts = append(opts, carteira.WithFileName(e.FileName))
	}
	return opts, nil
}

type carteiraArgs struct {
	Members    []*member.Record `json:"members"`
	Settings   member.Settings  `json:"settings"`
	Export     exportArgs       `json:"export"`
	OutputPath string           `json:"outputPath"`
}

func (a carteiraArgs) request() (docgen.CarteiraRequest, error) {
	opts, err := a.Export.options()
	if err != nil {
		return docgen.CarteiraRequest{}, err
	}
	return docgen.CarteiraRequest{Members: a.Members, Settings: a.Settings, Export: opts}, nil
}

type fichaArgs struct {
	Members     []*member.Record `json:"members"`
	Title       string           `json:"title"`
	GeneratedBy string           `json:"generatedBy"`
	Export      exportArgs       `json:"export"`
	OutputPath  string           `json:"outputPath"`
}

func (a fichaArgs) request() (docgen.FichaRequest, error) {
	opts, err := a.Export.options()
	if err != nil {
		return docgen.FichaRequest{}, err
	}
	return docgen.FichaRequest{Members: a.Members, Title: a.Title, GeneratedBy: a.GeneratedBy, Export: opts}, nil
}

func decodeArgs(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

var (
	membersSchema = map[string]any{
		"type":        "array",
		"description": "Member census records (nome, cargo, cpf, rg, matricula, dataNascimento, estadoCivil, filhos, foto, ...). See carteira://schema/member.",
		"items":       map[string]any{"type": "object"},
		"minItems":    1,
	}
	exportSchema = map[string]any{
		"type":        "object",
		"description": "Export options of the self-printing document.",
		"properties": map[string]any{
			"mode":     map[string]any{"type": "string", "enum": []string{"print", "download"}},
			"toolbar":  map[string]any{"type": "boolean", "description": "Show print/download/close buttons instead of acting automatically."},
			"title":    map[string]any{"type": "string"},
			"fileName": map[string]any{"type": "string", "description": "Name of the PDF saved in download mode."},
		},
	}
	settingsSchema = map[string]any{
		"type":        "object",
		"description": "Church branding: nomeIgreja, sigla, logoUrl, enderecoLinha1, enderecoLinha2, cep, nomeAssinante, cargoAssinante.",
	}
	outputPathSchema = map[string]any{
		"type":        "string",
		"description": "Optional file path to save the document. If omitted, the document is returned inline.",
	}
)

func buildCarteiraTool(gen Generator) Tool {
	return Tool{
		Name:        "build_carteira_document",
		Description: "Build the self-printing HTML document with one member identity card sheet (front and back, 160x100 mm) per member.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"members":    membersSchema,
				"settings":   settingsSchema,
				"export":     exportSchema,
				"outputPath": outputPathSchema,
			},
			"required": []string{"members"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args carteiraArgs
			if err := decodeArgs(raw, &args); err != nil {
				return ToolResult{}, err
			}
			req, err := args.request()
			if err != nil {
				return ToolResult{}, err
			}
			res, err := gen.CarteirasHTML(ctx, req)
			if err != nil {
				return ToolResult{}, err
			}
			return deliver(res, args.OutputPath)
		},
	}
}

func buildFichaTool(gen Generator) Tool {
	return Tool{
		Name:        "build_ficha_document",
		Description: "Build the self-printing HTML document with one A4 registration form (ficha de cadastro) per member.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"members":     membersSchema,
				"title":       map[string]any{"type": "string", "description": "Form heading. Defaults to FICHA DE CADASTRO DE MEMBRO."},
				"generatedBy": map[string]any{"type": "string", "description": "Operator printed in the page footer."},
				"export":      exportSchema,
				"outputPath":  outputPathSchema,
			},
			"required": []string{"members"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args fichaArgs
			if err := decodeArgs(raw, &args); err != nil {
				return ToolResult{}, err
			}
			req, err := args.request()
			if err != nil {
				return ToolResult{}, err
			}
			res, err := gen.FichasHTML(ctx, req)
			if err != nil {
				return ToolResult{}, err
			}
			return deliver(res, args.OutputPath)
		},
	}
}

func exportCarteiraPDFTool(gen Generator) Tool {
	return Tool{
		Name:        "export_carteira_pdf",
		Description: "Render member identity cards to PDF on the server, one card sheet centred on each A4 page with cut marks. Returns the PDF as base64.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"members":    membersSchema,
				"settings":   settingsSchema,
				"outputPath": outputPathSchema,
			},
			"required": []string{"members"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args carteiraArgs
			if err := decodeArgs(raw, &args); err != nil {
				return ToolResult{}, err
			}
			req, err := args.request()
			if err != nil {
				return ToolResult{}, err
			}
			res, err := gen.CarteirasPDF(ctx, req)
			if err != nil {
				return ToolResult{}, err
			}
			return deliver(res, args.OutputPath)
		},
	}
}

func exportFichaPDFTool(gen Generator) Tool {
	return Tool{
		Name:        "export_ficha_pdf",
		Description: "Render registration forms to A4 PDF on the server. Returns the PDF as base64.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"members":     membersSchema,
				"title":       map[string]any{"type": "string"},
				"generatedBy": map[string]any{"type": "string"},
				"outputPath":  outputPathSchema,
			},
			"required": []string{"members"},
		},
		Handler: func(ctx context.Context, raw json.RawMessage) (ToolResult, error) {
			var args fichaArgs
			if err := decodeArgs(raw, &args); err != nil {
				return ToolResult{}, err
			}
			req, err := args.request()
			if err != nil {
				return ToolResult{}, err
			}
			res, err := gen.FichasPDF(ctx, req)
			if err != nil {
				return ToolResult{}, err
			}
			return deliver(res, args.OutputPath)
		},
	}
}

// deliver writes res to path, or returns it inline: HTML as text, PDF as
// base64.
func deliver(res *docgen.Result, path string) (ToolResult, error) {
	if path != "" {
		if err := os.WriteFile(path, res.Body, 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return TextResult(fmt.Sprintf("Document %s written to %s (%d bytes)", res.ID, path, len(res.Body))), nil
	}
	if res.ContentType == docgen.ContentTypePDF {
		return ToolResult{Content: []ContentBlock{
			{Type: "text", Text: fmt.Sprintf("PDF %s created (%d bytes).", res.ID, len(res.Body))},
			{Type: "resource", MIMEType: docgen.ContentTypePDF, Data: base64.StdEncoding.EncodeToString(res.Body)},
		}}, nil
	}
	return ToolResult{Content: []ContentBlock{{Type: "text", MIMEType: "text/html", Text: string(res.Body)}}}, nil
}

func parseQRTool() Tool {
	return Tool{
		Name:        "parse_qr_payload",
		Description: "Decode the JSON payload scanned from a member card QR code and return its fields.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"payload": map[string]any{"type": "string", "description": "Raw text read from the QR code."},
			},
			"required": []string{"payload"},
		},
		Handler: func(_ context.Context, raw json.RawMessage) (ToolResult, error) {
			var args struct {
				Payload string `json:"payload"`
			}
			if err := decodeArgs(raw, &args); err != nil {
				return ToolResult{}, err
			}
			fields, ok := qrpayload.Parse(args.Payload)
			if !ok {
				return ToolResult{}, fmt.Errorf("not a card payload")
			}
			out, _ := json.MarshalIndent(map[string]any{
				"version": qrpayload.SchemaVersion(args.Payload),
				"fields":  fields,
			}, "", "  ")
			return TextResult(string(out)), nil
		},
	}
}

func formatFieldsTool() Tool {
	return Tool{
		Name:        "format_fields",
		Description: "Format raw values the way they are printed: CPF as 000.000.000-00, phones with area code, ISO dates as dd/mm/yyyy.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"cpf":   map[string]any{"type": "string"},
				"phone": map[string]any{"type": "string"},
				"date":  map[string]any{"type": "string", "description": "Date, optionally with time."},
			},
		},
		Handler: func(_ context.Context, raw json.RawMessage) (ToolResult, error) {
			var args struct {
				CPF   string `json:"cpf"`
				Phone string `json:"phone"`
				Date  string `json:"date"`
			}
			if err := decodeArgs(raw, &args); err != nil {
				return ToolResult{}, err
			}
			out := map[string]string{}
			if args.CPF != "" {
				out["cpf"] = format.CPF(args.CPF)
			}
			if args.Phone != "" {
				out["phone"] = format.Phone(args.Phone)
			}
			if args.Date != "" {
				out["date"] = format.Date(args.Date)
				out["dateShort"] = format.DateShort(args.Date)
			}
			data, _ := json.MarshalIndent(out, "", "  ")
			return TextResult(string(data)), nil
		},
	}
}

func renderTemplateTool() Tool {
	return Tool{
		Name:        "render_document_template",
		Description: "Render a declarative page template (pages of text, field, grid, table, image, qr, rect, line, checkbox elements) to PDF. Returns the PDF as base64.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"template": map[string]any{
					"type":        "object",
					"description": "Document template with title, pages and elements. Pages may set a fixed frame, e.g. 160x100 mm with cut marks.",
				},
				"outputPath": outputPathSchema,
			},
			"required": []string{"template"},
		},
		Handler: func(_ context.Context, raw json.RawMessage) (ToolResult, error) {
			var args struct {
				Template   json.RawMessage `json:"template"`
				OutputPath string          `json:"outputPath"`
			}
			if err := decodeArgs(raw, &args); err != nil {
				return ToolResult{}, err
			}
			if len(args.Template) == 0 {
				return ToolResult{}, fmt.Errorf("missing 'template' argument")
			}
			var buf bytes.Buffer
			if err := doctpl.Render(&buf, args.Template); err != nil {
				return ToolResult{}, fmt.Errorf("rendering PDF: %w", err)
			}
			return deliver(&docgen.Result{
				ID:          "template",
				ContentType: docgen.ContentTypePDF,
				Body:        buf.Bytes(),
			}, args.OutputPath)
		},
	}
}
