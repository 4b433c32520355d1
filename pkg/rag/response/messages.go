package response

// User-facing fallbacks returned instead of errors.
const (
	NoDocumentsMessage      = "Não encontrei documentos relevantes na base para responder a esta pergunta. Tente reformular a consulta ou incluir o tribunal, o tema ou o número do processo."
	GenerationFailedMessage = "Não foi possível gerar uma resposta no momento. Os documentos encontrados continuam disponíveis nas citações; tente novamente em instantes."
	EmptyPromptMessage      = "A pergunta está vazia. Envie uma pergunta para que eu possa pesquisar a base jurídica."
)
