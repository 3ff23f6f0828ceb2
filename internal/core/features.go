package core

import (
	"math"
	"strings"
	"unicode"

	"github.com/autou/mail-triage/internal/utils"
	"github.com/cloudflare/ahocorasick"
)

// Keyword dictionaries are stored accent-folded; input text is folded the
// same way before matching, so "Urgência" hits "urgencia".
var businessKeywords = []string{
	// Portuguese
	"problema", "erro", "ajuda", "suporte", "duvida", "questao",
	"solicitacao", "pedido", "requisicao", "atualizacao", "status",
	"informacao", "documento", "arquivo", "prazo", "urgente",
	"reuniao", "projeto", "tarefa", "aprovacao", "autorizacao",
	"confirmacao", "verificacao", "relatorio", "dados", "analise",
	"proposta", "orcamento", "sistema", "vendas", "fatura",
	"pagamento", "contrato",
	// English
	"problem", "issue", "error", "help", "support", "question",
	"request", "update", "information", "document", "deadline",
	"urgent", "meeting", "project", "task", "approval",
	"authorization", "confirmation", "verification", "report",
	"analysis", "proposal", "quote", "budget", "invoice",
	"payment", "contract",
}

var urgencyMarkers = []string{
	"urgente", "urgencia", "pressa", "rapido", "imediato", "emergencia",
	"prazo", "hoje", "amanha",
	"urgent", "urgency", "asap", "emergency", "immediately",
	"deadline", "today", "tomorrow",
}

var actionPatterns = []string{
	"preciso", "necessito", "gostaria", "solicito", "solicitamos",
	"poderia", "poderiam", "aguardo", "por favor", "favor", "envie",
	"can you", "could you", "would you", "please", "i need",
	"need you", "send me", "let me know",
}

var positiveWords = wordSet(
	"obrigado", "obrigada", "agradeco", "agradecimento", "parabens",
	"feliz", "felicidades", "otimo", "otima", "excelente", "incrivel",
	"maravilhoso", "maravilhosa", "sucesso", "abraco", "abracos", "adorei",
	"thanks", "thank", "great", "awesome", "happy", "congratulations",
	"wonderful", "amazing", "best",
)

var negativeWords = wordSet(
	"nao", "problema", "problemas", "erro", "erros", "falha", "falhou",
	"ruim", "pessimo", "pessima", "quebrado", "defeito", "reclamacao", "nunca",
	"not", "error", "errors", "problem", "problems", "fail", "failed",
	"failing", "broken", "issue", "issues", "wrong", "bad", "never",
)

var portugueseIndicators = wordSet("que", "para", "com", "uma", "por", "sao", "nao", "mais", "como", "seu", "de", "dos", "das")
var englishIndicators = wordSet("the", "and", "for", "are", "with", "not", "you", "this", "have", "from")

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Weights for composing raw signal counts into [0,1] features. Keyword
// hits count distinct dictionary entries, so a long rant repeating one
// word scores the same as a single mention.
const (
	businessHitWeight  = 0.25
	urgencyHitWeight   = 0.4
	exclaimWeight      = 0.3
	capsWeight         = 0.2
	actionHitWeight    = 0.5
	questionMarkWeight = 0.25
)

// FeatureExtractor derives the normalized signal vector from raw email
// text. It is a pure function of its input: no I/O, no failure modes.
type FeatureExtractor struct {
	business *ahocorasick.Matcher
	urgency  *ahocorasick.Matcher
	action   *ahocorasick.Matcher
}

// NewFeatureExtractor builds the keyword matchers once
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{
		business: ahocorasick.NewStringMatcher(businessKeywords),
		urgency:  ahocorasick.NewStringMatcher(urgencyMarkers),
		action:   ahocorasick.NewStringMatcher(actionPatterns),
	}
}

// Extract computes the feature vector for the given text. Empty or
// unintelligible input degrades to zero signals rather than failing.
func (e *FeatureExtractor) Extract(text string) FeatureVector {
	folded := utils.Fold(text)
	if strings.TrimSpace(folded) == "" {
		return FeatureVector{Language: "unknown"}
	}

	tokens := utils.Tokenize(folded)
	fv := FeatureVector{
		WordCount:     len(tokens),
		QuestionCount: strings.Count(text, "?"),
		ExclaimCount:  strings.Count(text, "!"),
		Language:      detectLanguage(tokens),
	}

	raw := []byte(folded)

	bizHits := len(e.business.Match(raw))
	fv.BusinessRelevance = clip01(businessHitWeight * float64(bizHits))

	urgHits := len(e.urgency.Match(raw))
	exclaimIntensity := math.Min(1, float64(fv.ExclaimCount)/3.0)
	caps := 0.0
	if capsRatio(text) > 0.3 {
		caps = 1.0
	}
	fv.Urgency = clip01(urgencyHitWeight*float64(urgHits) + exclaimWeight*exclaimIntensity + capsWeight*caps)

	actHits := len(e.action.Match(raw))
	fv.ActionRequest = clip01(actionHitWeight*float64(actHits) + questionMarkWeight*float64(fv.QuestionCount))

	fv.Sentiment = lexiconSentiment(tokens)

	return fv
}

// lexiconSentiment maps the token polarity balance to [0,1]; 0.5 is
// neutral. The +1 in the denominator damps single-word verdicts.
func lexiconSentiment(tokens []string) float64 {
	var pos, neg int
	for _, tok := range tokens {
		if _, ok := positiveWords[tok]; ok {
			pos++
		}
		if _, ok := negativeWords[tok]; ok {
			neg++
		}
	}
	if pos+neg == 0 {
		return 0.5
	}
	polarity := float64(pos-neg) / float64(pos+neg+1)
	return (polarity + 1) / 2
}

func detectLanguage(tokens []string) string {
	var pt, en int
	for _, tok := range tokens {
		if _, ok := portugueseIndicators[tok]; ok {
			pt++
		}
		if _, ok := englishIndicators[tok]; ok {
			en++
		}
	}
	switch {
	case pt > en:
		return "portuguese"
	case en > pt:
		return "english"
	default:
		return "unknown"
	}
}

// capsRatio is the share of uppercase letters among letters in the raw
// (unfolded) text. Short texts are exempt; "OK" is not shouting.
func capsRatio(text string) float64 {
	var upper, letters int
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters < 10 {
		return 0
	}
	return float64(upper) / float64(letters)
}

func clip01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
