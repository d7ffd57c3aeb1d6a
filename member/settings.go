package member

import "strings"

// Settings carries the site branding and signing authority printed on the
// card. Every field is optional.
type Settings struct {
	NomeIgreja     string `json:"nomeIgreja,omitempty" mapstructure:"nome_igreja"`
	Sigla          string `json:"sigla,omitempty" mapstructure:"sigla"`
	LogoURL        string `json:"logoUrl,omitempty" mapstructure:"logo_url"`
	EnderecoLinha1 string `json:"enderecoLinha1,omitempty" mapstructure:"endereco_linha1"`
	EnderecoLinha2 string `json:"enderecoLinha2,omitempty" mapstructure:"endereco_linha2"`
	CEP            string `json:"cep,omitempty" mapstructure:"cep"`
	NomeAssinante  string `json:"nomeAssinante,omitempty" mapstructure:"nome_assinante"`
	CargoAssinante string `json:"cargoAssinante,omitempty" mapstructure:"cargo_assinante"`
}

// AddressLine joins the address lines and CEP, or returns "" when none is set.
func (s Settings) AddressLine() string {
	cep := strings.TrimSpace(s.CEP)
	if cep != "" {
		cep = "CEP " + cep
	}
	return joinNonEmpty(" - ", s.EnderecoLinha1, s.EnderecoLinha2, cep)
}

// Merge returns s with empty fields filled from fallback.
func (s Settings) Merge(fallback Settings) Settings {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	return Settings{
		NomeIgreja:     pick(s.NomeIgreja, fallback.NomeIgreja),
		Sigla:          pick(s.Sigla, fallback.Sigla),
		LogoURL:        pick(s.LogoURL, fallback.LogoURL),
		EnderecoLinha1: pick(s.EnderecoLinha1, fallback.EnderecoLinha1),
		EnderecoLinha2: pick(s.EnderecoLinha2, fallback.EnderecoLinha2),
		CEP:            pick(s.CEP, fallback.CEP),
		NomeAssinante:  pick(s.NomeAssinante, fallback.NomeAssinante),
		CargoAssinante: pick(s.CargoAssinante, fallback.CargoAssinante),
	}
}
