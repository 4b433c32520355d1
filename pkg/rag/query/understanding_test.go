package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessCaseNumberQuery(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	pq := a.Process(Query{Text: "0001234-56.2024.8.26.0100"})

	require.NotNil(t, pq)
	assert.Equal(t, IntentSpecificCase, pq.Intent)
	assert.Equal(t, "0001234-56.2024.8.26.0100", pq.Entities.CaseNumber)
	assert.Equal(t, ComplexityLow, pq.Complexity)
	assert.Equal(t, "0001234-56.2024.8.26.0100", pq.Original)
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Intent
	}{
		{name: "judge keyword", raw: "Qual o perfil do ministro?", want: IntentJudgeProfile},
		{name: "judge entity", raw: "Relatora Nancy Andrighi", want: IntentJudgeProfile},
		{name: "statute abbreviation", raw: "O que diz o art. 927 do Código Civil", want: IntentStatuteLookup},
		{name: "trend before case law", raw: "tendência das decisões sobre icms", want: IntentTrendAnalysis},
		{name: "case law", raw: "jurisprudência sobre dano moral", want: IntentCaseLawSearch},
		{name: "court with case law keyword", raw: "decisões do STJ", want: IntentCaseLawSearch},
		{name: "fallback", raw: "responsabilidade do condomínio por infiltração", want: IntentGeneralSemantic},
	}

	x := NewRegexExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyIntent(Normalize(tt.raw), x.Extract(tt.raw))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractEntities(t *testing.T) {
	x := NewRegexExtractor()

	e := x.Extract("Ação de despejo e dano moral no tjsp, relator Paulo Dias")

	assert.Equal(t, "TJSP", e.Court)
	assert.Equal(t, "Paulo Dias", e.Judge)
	assert.Empty(t, e.CaseNumber)
	assert.Equal(t, []string{"dano moral", "despejo"}, e.Topics)
	assert.Equal(t, 2, e.Count())
	assert.False(t, e.Empty())
}

func TestExtractJudgeAfterStackedRoles(t *testing.T) {
	x := NewRegexExtractor()

	tests := []struct {
		raw  string
		want string
	}{
		{"Relator Ministro Herman Benjamin", "Herman Benjamin"},
		{"votos da relatora Ministra Nancy Andrighi sobre guarda", "Nancy Andrighi"},
		{"Desembargador Relator João Silva", "João Silva"},
		{"acórdãos do Rel. Min. Luis Felipe Salomão", "Luis Felipe Salomão"},
		{"decisões da juíza Ana Costa", "Ana Costa"},
		{"RELATOR Paulo Dias", "Paulo Dias"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, x.Extract(tt.raw).Judge)
		})
	}
}

func TestStripRoles(t *testing.T) {
	assert.Equal(t, "Herman Benjamin", stripRoles("Ministro Herman Benjamin"))
	assert.Equal(t, "João Silva", stripRoles("Relator  João Silva"))
	assert.Empty(t, stripRoles("Ministro"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "qual o prazo (art. 5º, §2)", Normalize("Qual  o PRAZO? (art. 5º, §2)"))
	assert.Equal(t, "", Normalize("  !!  "))
}

func TestSynonymExpansionIsIdempotent(t *testing.T) {
	s := NewSynonymTable()

	once, added := s.Expand("dano moral no stj")
	require.NotEmpty(t, added)
	assert.Contains(t, added, "danos morais")
	assert.Contains(t, added, "superior tribunal de justiça")

	twice, addedAgain := s.Expand(once)
	assert.Equal(t, once, twice)
	assert.Nil(t, addedAgain)
}

func TestSynonymExpansionBoundsGroups(t *testing.T) {
	s := NewSynonymTableWithGroups([][]string{
		{"alfa", "a1"},
		{"beta", "b1"},
		{"gama", "g1"},
	}, 2)

	out, added := s.Expand("alfa beta gama")

	assert.Equal(t, []string{"a1", "b1"}, added)
	assert.Equal(t, "alfa beta gama a1 b1", out)
}

func TestCarryOverTerms(t *testing.T) {
	t.Run("recurring term is carried", func(t *testing.T) {
		prior := []string{
			"usucapião de imóvel urbano",
			"prazo da usucapião extraordinária",
			"requisitos da usucapião urbana",
		}
		assert.Equal(t, []string{"usucapião"}, CarryOverTerms("e no caso rural", prior))
	})

	t.Run("needs at least two prior turns", func(t *testing.T) {
		assert.Nil(t, CarryOverTerms("prazo", []string{"usucapião usucapião"}))
	})

	t.Run("only the last three turns count", func(t *testing.T) {
		prior := []string{
			"execução fiscal icms",
			"icms substituição",
			"prazo recursal",
			"prazo recurso",
			"honorários advocatícios",
		}
		assert.Equal(t, []string{"prazo"}, CarryOverTerms("qual", prior))
	})

	t.Run("terms already present are skipped", func(t *testing.T) {
		prior := []string{"prazo recursal", "prazo recurso"}
		assert.Empty(t, CarryOverTerms("prazo em dobro", prior))
	})
}

func TestProcessAppendsCarriedTerms(t *testing.T) {
	a := NewAnalyzer(nil, nil)

	pq := a.Process(Query{
		Text: "E no caso rural?",
		PriorTurns: []string{
			"usucapião de imóvel urbano",
			"prazo da usucapião extraordinária",
		},
	})

	assert.Equal(t, []string{"usucapião"}, pq.CarriedTerms)
	assert.Equal(t, "e no caso rural usucapião", pq.Expanded)
	assert.Equal(t, "e no caso rural", pq.Normalized)
}

func TestRateComplexity(t *testing.T) {
	assert.Equal(t, ComplexityLow, RateComplexity("a b c", Entities{}))
	assert.Equal(t, ComplexityMedium, RateComplexity("a b c", Entities{Court: "STJ", Topics: []string{"x", "y"}}))
	assert.Equal(t, ComplexityHigh, RateComplexity("a b", Entities{
		Court:      "STJ",
		Judge:      "Nancy Andrighi",
		CaseNumber: "0001234-56.2024.8.26.0100",
		Topics:     []string{"x", "y"},
	}))
}
