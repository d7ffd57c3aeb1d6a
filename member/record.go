// Package member defines the census record consumed by the card and ficha
// builders, together with the presentation rules that depend only on the
// record itself: marital gating, children row count and photo source checks.
//
// Records arrive already validated from the document database; every field is
// optional and absence is rendered as a blank placeholder, never as an error.
package member

import (
	"strconv"
	"strings"
)

// MinChildRows is the number of blank children rows always printed on the
// registration form for manual fill-in.
const MinChildRows = 3

// Child is one entry of the children table.
type Child struct {
	Nome       Text `json:"nome,omitempty"`
	CPF        Text `json:"cpf,omitempty"`
	Observacao Text `json:"observacao,omitempty"`
}

// Empty reports whether no field of c is filled.
func (c Child) Empty() bool {
	return c.Nome == "" && c.CPF == "" && c.Observacao == ""
}

// Record is a member census record.
type Record struct {
	// Identity
	ID            Text `json:"id,omitempty"`
	Matricula     Text `json:"matricula,omitempty"`
	Nome          Text `json:"nome,omitempty"`
	Cargo         Text `json:"cargo,omitempty"`
	CPF           Text `json:"cpf,omitempty"`
	RG            Text `json:"rg,omitempty"`
	OrgaoEmissor  Text `json:"orgaoEmissor,omitempty"`
	TituloEleitor Text `json:"tituloEleitor,omitempty"`

	// Registration
	DataCadastro  Text `json:"dataCadastro,omitempty"`
	DataExpedicao Text `json:"dataExpedicao,omitempty"`
	MembroDesde   Text `json:"membroDesde,omitempty"`
	Congregacao   Text `json:"congregacao,omitempty"`
	Setor         Text `json:"setor,omitempty"`

	// Biographical
	DataNascimento Text `json:"dataNascimento,omitempty"`
	Nacionalidade  Text `json:"nacionalidade,omitempty"`
	Naturalidade   Text `json:"naturalidade,omitempty"`
	Profissao      Text `json:"profissao,omitempty"`
	Escolaridade   Text `json:"escolaridade,omitempty"`
	Sexo           Text `json:"sexo,omitempty"`

	// Contacts
	Telefone Text `json:"telefone,omitempty"`
	Celular  Text `json:"celular,omitempty"`
	Email    Text `json:"email,omitempty"`

	// Address
	Logradouro  Text `json:"logradouro,omitempty"`
	Numero      Text `json:"numero,omitempty"`
	Complemento Text `json:"complemento,omitempty"`
	Bairro      Text `json:"bairro,omitempty"`
	Cidade      Text `json:"cidade,omitempty"`
	UF          Text `json:"uf,omitempty"`
	CEP         Text `json:"cep,omitempty"`

	// Parentage
	NomePai  Text `json:"nomePai,omitempty"`
	CPFPai   Text `json:"cpfPai,omitempty"`
	OrfaoPai Flag `json:"orfaoPai,omitempty"`
	NomeMae  Text `json:"nomeMae,omitempty"`
	CPFMae   Text `json:"cpfMae,omitempty"`
	OrfaoMae Flag `json:"orfaoMae,omitempty"`

	// Marital
	EstadoCivil         Text `json:"estadoCivil,omitempty"`
	NomeConjuge         Text `json:"nomeConjuge,omitempty"`
	CPFConjuge          Text `json:"cpfConjuge,omitempty"`
	ProfissaoConjuge    Text `json:"profissaoConjuge,omitempty"`
	EscolaridadeConjuge Text `json:"escolaridadeConjuge,omitempty"`
	NascimentoConjuge   Text `json:"nascimentoConjuge,omitempty"`
	DataCasamento       Text `json:"dataCasamento,omitempty"`
	CertidaoCasamento   Text `json:"certidaoCasamento,omitempty"`

	// Children
	Filhos           []Child `json:"filhos,omitempty"`
	QuantidadeFilhos Text    `json:"quantidadeFilhos,omitempty"`

	// Ecclesiastical history
	DataConversao        Text `json:"dataConversao,omitempty"`
	LocalConversao       Text `json:"localConversao,omitempty"`
	DataBatismo          Text `json:"dataBatismo,omitempty"`
	LocalBatismo         Text `json:"localBatismo,omitempty"`
	DataRecepcao         Text `json:"dataRecepcao,omitempty"`
	FormaRecepcao        Text `json:"formaRecepcao,omitempty"`
	BatismoEspiritoSanto Flag `json:"batismoEspiritoSanto,omitempty"`
	DataBatismoEspirito  Text `json:"dataBatismoEspirito,omitempty"`
	IgrejaOrigem         Text `json:"igrejaOrigem,omitempty"`

	Observacoes Text `json:"observacoes,omitempty"`

	// Consent (LGPD)
	AutorizacaoDados  Flag `json:"autorizacaoDados,omitempty"`
	AutorizacaoImagem Flag `json:"autorizacaoImagem,omitempty"`

	Foto Text `json:"foto,omitempty"`
}

// Normalize trims every text field in place and drops children with no data.
// It returns r for chaining.
func (r *Record) Normalize() *Record {
	for _, f := range r.textFields() {
		*f = Text(strings.TrimSpace(string(*f)))
	}
	kept := r.Filhos[:0]
	for _, c := range r.Filhos {
		c.Nome = Text(strings.TrimSpace(string(c.Nome)))
		c.CPF = Text(strings.TrimSpace(string(c.CPF)))
		c.Observacao = Text(strings.TrimSpace(string(c.Observacao)))
		if !c.Empty() {
			kept = append(kept, c)
		}
	}
	r.Filhos = kept
	return r
}

func (r *Record) textFields() []*Text {
	return []*Text{
		&r.ID, &r.Matricula, &r.Nome, &r.Cargo, &r.CPF, &r.RG, &r.OrgaoEmissor, &r.TituloEleitor,
		&r.DataCadastro, &r.DataExpedicao, &r.MembroDesde, &r.Congregacao, &r.Setor,
		&r.DataNascimento, &r.Nacionalidade, &r.Naturalidade, &r.Profissao, &r.Escolaridade, &r.Sexo,
		&r.Telefone, &r.Celular, &r.Email,
		&r.Logradouro, &r.Numero, &r.Complemento, &r.Bairro, &r.Cidade, &r.UF, &r.CEP,
		&r.NomePai, &r.CPFPai, &r.NomeMae, &r.CPFMae,
		&r.EstadoCivil, &r.NomeConjuge, &r.CPFConjuge, &r.ProfissaoConjuge, &r.EscolaridadeConjuge,
		&r.NascimentoConjuge, &r.DataCasamento, &r.CertidaoCasamento, &r.QuantidadeFilhos,
		&r.DataConversao, &r.LocalConversao, &r.DataBatismo, &r.LocalBatismo, &r.DataRecepcao,
		&r.FormaRecepcao, &r.DataBatismoEspirito, &r.IgrejaOrigem, &r.Observacoes, &r.Foto,
	}
}

// Identifier is the number printed as the member's registration: the
// matrícula when present, otherwise the record id.
func (r *Record) Identifier() string {
	if r.Matricula != "" {
		return r.Matricula.String()
	}
	return r.ID.String()
}

// DeclaredChildren parses the declared children count. Non-numeric values
// count as zero.
func (r *Record) DeclaredChildren() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.QuantidadeFilhos.String()))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// HasChildrenData reports whether any child or a declared count is recorded.
func (r *Record) HasChildrenData() bool {
	for _, c := range r.Filhos {
		if !c.Empty() {
			return true
		}
	}
	return r.DeclaredChildren() > 0
}

// ChildRows returns the rows of the children table:
// max(len(Filhos), DeclaredChildren(), MinChildRows), padded with blanks.
func (r *Record) ChildRows() []Child {
	n := max(len(r.Filhos), r.DeclaredChildren(), MinChildRows)
	rows := make([]Child, n)
	copy(rows, r.Filhos)
	return rows
}

// Address joins the address fields into a single display line.
func (r *Record) Address() string {
	street := joinNonEmpty(", ", r.Logradouro.String(), r.Numero.String(), r.Complemento.String())
	city := joinNonEmpty("/", r.Cidade.String(), r.UF.String())
	return joinNonEmpty(" - ", street, r.Bairro.String(), city)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
