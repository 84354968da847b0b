package assistant

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"restart50-service/internal/catalog"
)

// maxSuggestions caps the course titles listed by the catalog fallback.
const maxSuggestions = 3

// minTermLength is the shortest word considered by the catalog fallback.
const minTermLength = 3

const shortKeyword = 2

// Rule answers with Reply when the input contains any of Keywords.
// Keywords of up to shortKeyword letters match whole words only, so "ia" does
// not fire on "dia". Longer single words match any input word they prefix
// ("nota" matches "notas"). Multi-word keywords match as phrases.
type Rule struct {
	Name     string
	Keywords []string
	Reply    string
}

// DefaultRules are evaluated in order; the first match wins.
var DefaultRules = []Rule{
	{
		Name:     "ai",
		Keywords: []string{"ia", "inteligência"},
		Reply:    "IA = Inteligência Artificial. Exemplos práticos: assistentes de escrita, classificadores simples. Veja o curso 'IA Essencial para Iniciantes'.",
	},
	{
		Name:     "iot",
		Keywords: []string{"iot", "internet das coisas", "coisas"},
		Reply:    "IoT = dispositivos conectados. No curso 'IoT para o Lar e Saúde' mostramos exemplos práticos.",
	},
	{
		Name:     "assessment",
		Keywords: []string{"quiz", "avaliação", "avaliações", "nota"},
		Reply:    "As avaliações ficam em 'Avaliações'. Ao enviar as respostas, a nota será salva em seu perfil e aparecerá em 'Meu Progresso'.",
	},
	{
		Name:     "contact",
		Keywords: []string{"contato", "instrutor", "dúvida"},
		Reply:    "Use a página 'Contato com Instrutor' para enviar uma mensagem diretamente ao instrutor.",
	},
}

// GenericReplies are used when nothing else matches.
var GenericReplies = []string{
	"Boa pergunta — tente perguntar 'O que é IA?' ou 'Como vejo minhas notas?'.",
	"Posso sugerir um curso se você disser uma palavra-chave (ex.: 'dados', 'IoT', 'marketing').",
}

type compiledRule struct {
	words    map[string]struct{}
	prefixes []string
	phrases  []string
	reply    string
}

type courseTerms struct {
	title string
	terms map[string]struct{}
}

// Dispatcher picks a reply for free text. It keeps no state between inputs.
type Dispatcher struct {
	rules   []compiledRule
	courses []courseTerms
	generic []string
	pick    func(n int) int
}

// New builds a dispatcher over the catalog. pick returns a value in [0, n);
// nil uses a time-seeded random source.
func New(courses *catalog.Catalog, pick func(n int) int) *Dispatcher {
	return NewWithRules(DefaultRules, GenericReplies, courses, pick)
}

// NewWithRules builds a dispatcher with custom rules and fallback replies.
func NewWithRules(rules []Rule, generic []string, courses *catalog.Catalog, pick func(n int) int) *Dispatcher {
	if pick == nil {
		pick = lockedRand(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	d := &Dispatcher{generic: append([]string(nil), generic...), pick: pick}
	for _, r := range rules {
		cr := compiledRule{words: make(map[string]struct{}), reply: r.Reply}
		for _, kw := range r.Keywords {
			words := Words(kw)
			switch len(words) {
			case 0:
			case 1:
				if len([]rune(words[0])) <= shortKeyword {
					cr.words[words[0]] = struct{}{}
				} else {
					cr.prefixes = append(cr.prefixes, words[0])
				}
			default:
				cr.phrases = append(cr.phrases, " "+strings.Join(words, " ")+" ")
			}
		}
		d.rules = append(d.rules, cr)
	}
	if courses != nil {
		for _, c := range courses.All() {
			terms := make(map[string]struct{})
			for _, w := range Words(c.Title + " " + c.Description) {
				if len([]rune(w)) >= minTermLength {
					terms[w] = struct{}{}
				}
			}
			d.courses = append(d.courses, courseTerms{title: c.Title, terms: terms})
		}
	}
	return d
}

// Reply classifies text and returns the answer.
func (d *Dispatcher) Reply(text string) string {
	words := Words(text)
	joined := " " + strings.Join(words, " ") + " "

	for _, r := range d.rules {
		if r.matches(words, joined) {
			return r.reply
		}
	}

	if found := d.relatedCourses(words); len(found) > 0 {
		return fmt.Sprintf("Encontrei cursos relacionados: %s. Deseja que eu direcione você até 'Cursos'?", strings.Join(found, ", "))
	}

	if len(d.generic) == 0 {
		return ""
	}
	return d.generic[d.pick(len(d.generic))]
}

func (r compiledRule) matches(words []string, joined string) bool {
	for _, w := range words {
		if _, ok := r.words[w]; ok {
			return true
		}
		for _, p := range r.prefixes {
			if strings.HasPrefix(w, p) {
				return true
			}
		}
	}
	for _, p := range r.phrases {
		if strings.Contains(joined, p) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) relatedCourses(words []string) []string {
	var found []string
	for _, c := range d.courses {
		for _, w := range words {
			if _, ok := c.terms[w]; ok {
				found = append(found, c.title)
				break
			}
		}
		if len(found) == maxSuggestions {
			break
		}
	}
	return found
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Words lower-cases text, strips accents and splits it on anything that is
// not a letter or digit.
func Words(text string) []string {
	folded, _, err := transform.String(folder, strings.ToLower(text))
	if err != nil {
		folded = strings.ToLower(text)
	}
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func lockedRand(rnd *rand.Rand) func(n int) int {
	var mu sync.Mutex
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rnd.Intn(n)
	}
}
