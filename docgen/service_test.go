package docgen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/member"
)

var now = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

type fakePhotos struct {
	prepared []string
	resolved []string
	fail     bool
}

func (f *fakePhotos) Resolve(_ context.Context, ref string) (string, error) {
	f.resolved = append(f.resolved, ref)
	if f.fail {
		return "", errors.New("unreachable")
	}
	return "data:image/jpeg;base64,AAAA", nil
}

func (f *fakePhotos) Prepare(_ context.Context, rec *member.Record) {
	f.prepared = append(f.prepared, rec.Nome.String())
	if rec.Foto != "" && !f.fail {
		rec.Foto = "data:image/jpeg;base64,AAAA"
	}
}

func newService(t *testing.T, opts ...Option) (*Service, *Metrics) {
	t.Helper()
	m := NewMetrics(prometheus.NewRegistry())
	base := []Option{
		WithClock(carteira.FixedClock(now)),
		WithMetrics(m),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithIDGenerator(func() string { return "doc-1" }),
	}
	return New(append(base, opts...)...), m
}

func TestCarteirasHTML(t *testing.T) {
	photos := &fakePhotos{}
	svc, m := newService(t, WithPhotoResolver(photos))

	res, err := svc.CarteirasHTML(context.Background(), CarteiraRequest{
		Members: []*member.Record{
			{Nome: "  Maria  ", Foto: "https://cdn.example.com/maria.jpg"},
			{Nome: "João"},
		},
		Settings: member.Settings{NomeIgreja: "Igreja Central"},
		Export:   []carteira.Option{carteira.WithFileName("carteiras.pdf")},
	})
	require.NoError(t, err)

	body := string(res.Body)
	assert.Equal(t, ContentTypeHTML, res.ContentType)
	assert.Equal(t, "carteiras.pdf", res.FileName)
	assert.Equal(t, "doc-1", res.ID)
	assert.Equal(t, 2, strings.Count(body, `class="carteira-sheet"`))
	assert.Contains(t, body, "data:image/jpeg;base64,AAAA")
	assert.Contains(t, body, "data:image/png;base64,")
	assert.Contains(t, body, "01/03/2026")
	assert.Equal(t, []string{"Maria", "João"}, photos.prepared)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsGenerated.WithLabelValues("carteira", "html")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.MembersRendered.WithLabelValues("carteira")))
}

func TestCarteirasDoesNotMutateInput(t *testing.T) {
	svc, _ := newService(t, WithPhotoResolver(&fakePhotos{}))
	rec := &member.Record{Nome: " Maria ", Foto: "https://cdn.example.com/m.jpg",
		Filhos: []member.Child{{}, {Nome: "Pedro"}}}

	_, err := svc.CarteirasHTML(context.Background(), CarteiraRequest{Members: []*member.Record{rec}})
	require.NoError(t, err)

	assert.Equal(t, member.Text(" Maria "), rec.Nome)
	assert.Equal(t, member.Text("https://cdn.example.com/m.jpg"), rec.Foto)
	assert.Len(t, rec.Filhos, 2)
}

func TestCarteirasRequireMembers(t *testing.T) {
	svc, m := newService(t)

	_, err := svc.CarteirasHTML(context.Background(), CarteiraRequest{})
	assert.ErrorIs(t, err, carteira.ErrNoMembers)
	_, err = svc.CarteirasPDF(context.Background(), CarteiraRequest{})
	assert.ErrorIs(t, err, carteira.ErrNoMembers)
	_, err = svc.FichasHTML(context.Background(), FichaRequest{})
	assert.ErrorIs(t, err, carteira.ErrNoMembers)
	_, err = svc.FichasPDF(context.Background(), FichaRequest{})
	assert.ErrorIs(t, err, carteira.ErrNoMembers)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsFailed.WithLabelValues("ficha", "pdf")))
}

func TestBrandingFallsBackToDefaults(t *testing.T) {
	photos := &fakePhotos{}
	svc, _ := newService(t,
		WithPhotoResolver(photos),
		WithSettings(member.Settings{NomeIgreja: "Sede", LogoURL: "https://cdn.example.com/logo.png"}),
	)

	res, err := svc.CarteirasHTML(context.Background(), CarteiraRequest{Members: []*member.Record{{Nome: "Maria"}}})
	require.NoError(t, err)

	assert.Contains(t, string(res.Body), "Sede")
	assert.Equal(t, []string{"https://cdn.example.com/logo.png"}, photos.resolved)
}

func TestBrandingKeepsLogoWhenResolveFails(t *testing.T) {
	svc, _ := newService(t, WithPhotoResolver(&fakePhotos{fail: true}))

	res, err := svc.CarteirasHTML(context.Background(), CarteiraRequest{
		Members:  []*member.Record{{Nome: "Maria"}},
		Settings: member.Settings{LogoURL: "https://cdn.example.com/logo.png"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(res.Body), "https://cdn.example.com/logo.png")
}

func TestCarteirasPDF(t *testing.T) {
	svc, m := newService(t)

	res, err := svc.CarteirasPDF(context.Background(), CarteiraRequest{
		Members: []*member.Record{{Nome: "Maria", Cargo: "Diaconisa"}},
	})
	require.NoError(t, err)

	assert.Equal(t, ContentTypePDF, res.ContentType)
	assert.Equal(t, carteira.DefaultFileName, res.FileName)
	assert.True(t, bytes.HasPrefix(res.Body, []byte("%PDF-")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsGenerated.WithLabelValues("carteira", "pdf")))
}

func TestFichasHTMLFooter(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.FichasHTML(context.Background(), FichaRequest{
		Members:     []*member.Record{{Nome: "Maria"}, {Nome: "Pedro"}},
		GeneratedBy: "secretaria",
	})
	require.NoError(t, err)

	body := string(res.Body)
	assert.Equal(t, "doc-1", res.ID)
	assert.Equal(t, 2, strings.Count(body, `class="ficha-page"`))
	assert.Contains(t, body, "Documento doc-1")
	assert.Contains(t, body, "Impresso em 01/03/2026 09:30")
	assert.Contains(t, body, "por secretaria")
	assert.Contains(t, body, "<title>FICHA DE CADASTRO DE MEMBRO</title>")
}

func TestFichasPDF(t *testing.T) {
	ids := 0
	svc, _ := newService(t, WithIDGenerator(func() string {
		ids++
		return "id-" + string(rune('0'+ids))
	}))

	res, err := svc.FichasPDF(context.Background(), FichaRequest{
		Members: []*member.Record{{Nome: "Maria", EstadoCivil: "Casada", NomeConjuge: "José"}},
		Title:   "Ficha",
	})
	require.NoError(t, err)

	assert.Equal(t, "id-1", res.ID)
	assert.Equal(t, ContentTypePDF, res.ContentType)
	assert.True(t, bytes.HasPrefix(res.Body, []byte("%PDF-")))
}

func TestNilMemberRendersBlank(t *testing.T) {
	svc, _ := newService(t)

	res, err := svc.CarteirasHTML(context.Background(), CarteiraRequest{Members: []*member.Record{nil}})
	require.NoError(t, err)
	assert.Contains(t, string(res.Body), "SEM FOTO")
}
