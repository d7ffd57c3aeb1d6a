package mcp

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/member"
	"github.com/lvillar/carteira/printdoc"
)

// RegisterDefaultResources adds the read-only reference resources.
func RegisterDefaultResources(s *Server) {
	s.AddResource(Resource{
		URI:         "carteira://schema/member",
		Name:        "Member record schema",
		Description: "JSON field names of a member record and of the church settings, with an example record.",
		MIMEType:    "application/json",
		Handler:     handleMemberSchema,
	})
	s.AddResource(Resource{
		URI:         "carteira://runtime/machine",
		Name:        "Document runtime state machine",
		Description: "Transition tables of the self-printing document for each mode, with and without toolbar.",
		MIMEType:    "application/json",
		Handler:     handleMachineResource,
	})
}

// jsonFields lists the JSON names of t's fields in declaration order.
func jsonFields(t reflect.Type) []string {
	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			fields = append(fields, name)
		}
	}
	return fields
}

func handleMemberSchema(_ context.Context, uri string) ([]ResourceContent, error) {
	example := member.Record{
		Matricula:      "0042",
		Nome:           "Maria da Silva",
		Cargo:          "Diaconisa",
		CPF:            "12345678901",
		DataNascimento: "1980-02-03",
		EstadoCivil:    "Casado(a)",
		NomeConjuge:    "José da Silva",
		NomePai:        "João da Silva",
		NomeMae:        "Ana da Silva",
		MembroDesde:    "2005-06-12",
		Filhos:         []member.Child{{Nome: "Pedro da Silva"}},
		Foto:           "https://example.com/fotos/0042.jpg",
	}
	doc := map[string]any{
		"record":   jsonFields(reflect.TypeOf(member.Record{})),
		"child":    jsonFields(reflect.TypeOf(member.Child{})),
		"settings": jsonFields(reflect.TypeOf(member.Settings{})),
		"notes": []string{
			"Every field is optional; blank values print as empty placeholders.",
			"Flags accept booleans or the strings sim/não, true/false, 1/0.",
			"Marital fields are printed only when estadoCivil indicates a marriage or stable union.",
			"foto accepts http(s) URLs, root-relative paths and data:image URIs.",
		},
		"example": example,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}

func handleMachineResource(_ context.Context, uri string) ([]ResourceContent, error) {
	tables := map[string]printdoc.MachineSpec{}
	for _, mode := range []carteira.Mode{carteira.ModePrint, carteira.ModeDownload} {
		tables[string(mode)] = printdoc.Machine(mode, false)
		tables[string(mode)+"+toolbar"] = printdoc.Machine(mode, true)
	}
	data, err := json.MarshalIndent(tables, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{URI: uri, MIMEType: "application/json", Text: string(data)}}, nil
}
