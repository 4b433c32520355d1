package citation

import (
	"net/url"
	"strings"
)

// DefaultCourtURLs maps court codes to the public case-lookup endpoint that
// accepts a CNJ number as its last query parameter.
var DefaultCourtURLs = map[string]string{
	"STF":  "https://portal.stf.jus.br/processos/listarProcessos.asp?numeroUnico=",
	"STJ":  "https://processo.stj.jus.br/processo/pesquisa/?tipoPesquisa=tipoPesquisaNumeroUnico&termo=",
	"TST":  "https://consultaprocessual.tst.jus.br/consultaProcessual/consultaTstNumUnica.do?numeroTst=",
	"TJSP": "https://esaj.tjsp.jus.br/cpopg/search.do?cbPesquisa=NUMPROC&dadosConsulta.valorConsultaNuUnificado=",
	"TJRJ": "https://www3.tjrj.jus.br/consultaprocessual/#/consultapublica?numProcessoCNJ=",
	"TJMG": "https://www4.tjmg.jus.br/juridico/sf/proc_resultado.jsp?listaProcessos=",
	"TRF1": "https://processual.trf1.jus.br/consultaProcessual/processo.php?proc=",
	"TRF2": "https://eproc.trf2.jus.br/eproc/externo_controlador.php?acao=processo_seleciona_publica&num_processo=",
	"TRF3": "https://web.trf3.jus.br/consultas/Internet/ConsultaProcessual/Processo?NumeroProcesso=",
	"TRF4": "https://consulta.trf4.jus.br/trf4/controlador.php?acao=consulta_processual_resultado_pesquisa&txtValor=",
	"TRF5": "https://cp.trf5.jus.br/processo/",
}

// LinkBuilder resolves external URLs from a court table.
type LinkBuilder struct {
	bases map[string]string
}

func NewLinkBuilder(bases map[string]string) *LinkBuilder {
	if bases == nil {
		bases = DefaultCourtURLs
	}
	return &LinkBuilder{bases: bases}
}

// Link returns "" unless both the court is known and a case number exists.
func (l *LinkBuilder) Link(court, caseNumber string) string {
	caseNumber = strings.TrimSpace(caseNumber)
	if caseNumber == "" {
		return ""
	}
	base, ok := l.bases[strings.ToUpper(strings.TrimSpace(court))]
	if !ok || base == "" {
		return ""
	}
	return base + url.QueryEscape(caseNumber)
}
