package assistant

import (
	"strings"
	"testing"

	"restart50-service/internal/catalog"
)

func newTestDispatcher(pick func(int) int) *Dispatcher {
	return New(catalog.Default(), pick)
}

func TestIoTReplyRegardlessOfCasing(t *testing.T) {
	d := newTestDispatcher(func(int) int { return 0 })
	iot := DefaultRules[1].Reply
	for _, in := range []string{"iot", "IOT", "Como funciona o IoT na minha casa?", "me fale de iot, por favor"} {
		if got := d.Reply(in); got != iot {
			t.Fatalf("input %q: expected IoT reply, got %q", in, got)
		}
	}
}

func TestRulesFirstMatchWins(t *testing.T) {
	d := newTestDispatcher(func(int) int { return 0 })
	if got := d.Reply("O que é Inteligência Artificial?"); got != DefaultRules[0].Reply {
		t.Fatalf("expected AI reply, got %q", got)
	}
	if got := d.Reply("IA e IoT juntas"); got != DefaultRules[0].Reply {
		t.Fatalf("expected first rule to win, got %q", got)
	}
	if got := d.Reply("Onde vejo minha NOTA?"); got != DefaultRules[2].Reply {
		t.Fatalf("expected assessment reply, got %q", got)
	}
	if got := d.Reply("tenho uma duvida"); got != DefaultRules[3].Reply {
		t.Fatalf("expected contact reply without accent, got %q", got)
	}
	if got := d.Reply("falar com a internet das coisas"); got != DefaultRules[1].Reply {
		t.Fatalf("expected phrase match, got %q", got)
	}
}

func TestKeywordsMatchWholeWords(t *testing.T) {
	d := newTestDispatcher(func(int) int { return 1 })
	// "dia" contains "ia" but is a different word.
	if got := d.Reply("bom dia"); got == DefaultRules[0].Reply {
		t.Fatalf("substring must not trigger the AI rule")
	}
}

func TestKeywordsMatchInflectedWords(t *testing.T) {
	d := newTestDispatcher(func(int) int { return 0 })
	cases := map[string]string{
		"Como vejo minhas notas?":        DefaultRules[2].Reply,
		"Onde ficam as avaliações?":      DefaultRules[2].Reply,
		"Tenho dúvidas":                  DefaultRules[3].Reply,
		"Quero falar com os instrutores": DefaultRules[3].Reply,
	}
	for in, want := range cases {
		if got := d.Reply(in); got != want {
			t.Fatalf("input %q: got %q want %q", in, got, want)
		}
	}
}

func TestGenericSuggestionsAreAnswered(t *testing.T) {
	d := newTestDispatcher(func(int) int { return 0 })
	if got := d.Reply("O que é IA?"); got != DefaultRules[0].Reply {
		t.Fatalf("expected AI reply, got %q", got)
	}
	if got := d.Reply("Como vejo minhas notas?"); got != DefaultRules[2].Reply {
		t.Fatalf("expected assessment reply, got %q", got)
	}
}

func TestCatalogFallbackListsCourses(t *testing.T) {
	d := newTestDispatcher(func(int) int { return 0 })
	got := d.Reply("Quero aprender sobre marketing")
	if !strings.HasPrefix(got, "Encontrei cursos relacionados: Marketing Digital Prático.") {
		t.Fatalf("unexpected reply %q", got)
	}

	got = d.Reply("segurança")
	if !strings.Contains(got, ": IoT para o Lar e Saúde, Trabalho Remoto e Ferramentas.") {
		t.Fatalf("expected accent-folded match on two courses, got %q", got)
	}

	got = d.Reply("como")
	if !strings.Contains(got, ": IA Essencial para Iniciantes, IoT para o Lar e Saúde, Empreendedorismo Sênior.") {
		t.Fatalf("expected three titles in catalog order, got %q", got)
	}
}

func TestGenericFallbackUsesInjectedPick(t *testing.T) {
	var asked int
	d := newTestDispatcher(func(n int) int {
		asked = n
		return 1
	})
	if got := d.Reply("xyzzy"); got != GenericReplies[1] {
		t.Fatalf("expected second generic reply, got %q", got)
	}
	if asked != len(GenericReplies) {
		t.Fatalf("pick called with %d, want %d", asked, len(GenericReplies))
	}
}

func TestWordsFoldsAccents(t *testing.T) {
	got := Words("Avaliação, DÚVIDA! saúde-123")
	want := []string{"avaliacao", "duvida", "saude", "123"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("got %v want %v", got, want)
	}
}
