// Package qrpayload encodes and decodes the identity payload carried by the
// QR code on the member card.
//
// The payload is a compact versioned JSON object:
//
//	{"v":1,"data":{"id":"1042","nome":"Maria Silva","cpf":"123.456.789-01", ...}}
//
// Producers are strict: only the known keys are written and empty values are
// dropped. Consumers are permissive: Parse accepts unknown keys, missing keys
// and any version, because printed cards are scanned by older and newer
// versions of the companion app.
package qrpayload

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/lvillar/carteira/format"
	"github.com/lvillar/carteira/member"
)

// Version is the schema version written by Build.
const Version = 1

// Keys written under "data", in a stable order.
const (
	KeyID          = "id"
	KeyNome        = "nome"
	KeyCargo       = "cargo"
	KeyExpedidaEm  = "expedidaEm"
	KeyMembroDesde = "membroDesde"
	KeyFiliacaoPai = "filiacaoPai"
	KeyFiliacaoMae = "filiacaoMae"
	KeyNascimento  = "nascimento"
	KeyEstadoCivil = "estadoCivil"
	KeyCPF         = "cpf"
	KeyRG          = "rg"
)

type envelope struct {
	V    int               `json:"v"`
	Data map[string]string `json:"data"`
}

// IssueDate is the issue date printed on the card and in the payload: the
// record's dataExpedicao when set, otherwise issuedAt.
func IssueDate(rec *member.Record, issuedAt time.Time) string {
	if rec.DataExpedicao != "" {
		return format.DateShort(rec.DataExpedicao.String())
	}
	return issuedAt.Format("02/01/2006")
}

// Fields returns the non-empty payload fields of rec.
func Fields(rec *member.Record, issuedAt time.Time) map[string]string {
	all := map[string]string{
		KeyID:          rec.Identifier(),
		KeyNome:        rec.Nome.String(),
		KeyCargo:       rec.Cargo.String(),
		KeyExpedidaEm:  IssueDate(rec, issuedAt),
		KeyMembroDesde: format.DateShort(rec.MembroDesde.String()),
		KeyFiliacaoPai: rec.NomePai.String(),
		KeyFiliacaoMae: rec.NomeMae.String(),
		KeyNascimento:  format.DateShort(rec.DataNascimento.String()),
		KeyEstadoCivil: rec.EstadoCivil.String(),
		KeyCPF:         format.CPF(rec.CPF.String()),
		KeyRG:          rec.RG.String(),
	}
	for k, v := range all {
		if v == "" {
			delete(all, k)
		}
	}
	return all
}

// Build serializes the identity payload of rec. issuedAt is the fallback
// issue date; pass a fixed time for reproducible output.
func Build(rec *member.Record, issuedAt time.Time) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// map keys are sorted by encoding/json, so output is deterministic
	if err := enc.Encode(envelope{V: Version, Data: Fields(rec, issuedAt)}); err != nil {
		return `{"v":1,"data":{}}`
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// Parse decodes a scanned payload. It reports false for input that is not
// JSON or has no object under "data". Scalar values are returned as strings;
// nested values are skipped.
func Parse(raw string) (map[string]string, bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return nil, false
	}
	data, ok := top["data"]
	if !ok {
		return nil, false
	}
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, false
	}

	out := make(map[string]string, len(fields))
	for k, v := range fields {
		switch x := v.(type) {
		case string:
			out[k] = x
		case json.Number:
			out[k] = x.String()
		case bool:
			out[k] = strconv.FormatBool(x)
		}
	}
	return out, true
}

// SchemaVersion returns the "v" tag of a payload, or 0 when absent.
func SchemaVersion(raw string) int {
	var top struct {
		V json.Number `json:"v"`
	}
	if err := json.Unmarshal([]byte(raw), &top); err != nil {
		return 0
	}
	v, err := top.V.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}
