package websocket

import "juris-rag-be/pkg/rag/pipeline"

const (
	MsgWelcome          = "Conectado. Envie sua pergunta jurídica."
	MsgSessionActive    = "Esta sessão já está conectada em outra janela."
	MsgInvalidFrame     = "Mensagem inválida: esperado JSON com os campos type e content."
	MsgUnsupportedFrame = "Tipo de mensagem não suportado."
	MsgEmptyMessage     = "A pergunta está vazia."
	MsgBusy             = "Aguarde a resposta anterior antes de enviar outra pergunta."
	MsgQueryFailed      = "Não foi possível processar sua pergunta. Tente novamente."
)

var stageMessages = map[pipeline.Stage]string{
	pipeline.StageProcessing: "Analisando a pergunta...",
	pipeline.StageSearching:  "Buscando documentos relevantes...",
	pipeline.StageGenerating: "Gerando a resposta...",
}
