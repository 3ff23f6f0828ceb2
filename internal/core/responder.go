package core

import "hash/fnv"

// Reply template pools per category. Productive replies acknowledge the
// request; unproductive replies reciprocate the social tone.
var productiveResponses = []string{
	"Obrigado pela sua mensagem. Estou analisando sua solicitação e retornarei com uma resposta detalhada em breve.",
	"Recebi sua mensagem e entendo a urgência do assunto. Vou providenciar as informações solicitadas e te retorno hoje ainda.",
	"Sua solicitação foi recebida e está sendo processada pela nossa equipe. Você receberá uma atualização em até 24 horas.",
	"Agradeço pelo contato. Vou verificar as informações necessárias e te envio um retorno completo ainda hoje.",
	"Entendi sua demanda e vou trabalhar para resolvê-la. Te mantenho informado sobre o progresso.",
}

// Subset of productive replies that explicitly promise a same-day or
// prompt turnaround, used when the email signals urgency.
var urgentResponses = []string{
	productiveResponses[0],
	productiveResponses[1],
	productiveResponses[3],
}

var unproductiveResponses = []string{
	"Muito obrigado pela mensagem! Desejo tudo de melhor para você também.",
	"Agradeço pelas palavras gentis. Tenha um excelente dia!",
	"Obrigado pelo carinho! Fico feliz em receber sua mensagem.",
	"Muito obrigado! Desejo sucesso em todos os seus projetos.",
	"Agradeço pela mensagem. Tenha uma semana produtiva!",
}

// ResponseGenerator selects a suggested reply for the rules and local-AI
// paths. Selection hashes the email content instead of drawing randomly,
// so the same email always gets the same reply.
type ResponseGenerator struct{}

// NewResponseGenerator creates a response generator
func NewResponseGenerator() *ResponseGenerator {
	return &ResponseGenerator{}
}

// Generate picks a reply keyed by category and detected intent markers
func (g *ResponseGenerator) Generate(category Category, fv FeatureVector, content string) string {
	pool := unproductiveResponses
	if category == CategoryProductive {
		pool = productiveResponses
		if fv.Urgency > 0 {
			pool = urgentResponses
		}
	}
	return pool[pickIndex(content, len(pool))]
}

func pickIndex(content string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(content))
	return int(h.Sum32() % uint32(n))
}
