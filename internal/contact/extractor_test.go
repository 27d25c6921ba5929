package contact

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Scenarios(t *testing.T) {
	e := New(DefaultConfig())

	t.Run("labeled site and phone on one line", func(t *testing.T) {
		r := e.ExtractMarkup("Сайт: example.com Телефон: +7 (495) 123-45-67")
		assert.Equal(t, Result{
			Website: "https://example.com",
			Phone:   "+7 (495) 123-45-67",
		}, r)
	})

	t.Run("email domain is not a website", func(t *testing.T) {
		r := e.ExtractMarkup(`<p>Контакты: <a href="mailto:info@firm.ru">info@firm.ru</a></p><p>Сайт компании firm.ru</p>`)
		assert.Equal(t, "info@firm.ru", r.Email)
		assert.Empty(t, r.Website)
	})

	t.Run("social network is not a website", func(t *testing.T) {
		r := e.ExtractMarkup("Мы в соцсетях: www.vk.com/firm")
		assert.Equal(t, Result{}, r)
	})

	t.Run("empty and missing blocks", func(t *testing.T) {
		assert.Equal(t, Result{}, e.Extract(nil))
		assert.Equal(t, Result{}, e.Extract(NewBlock("")))
		assert.Equal(t, Result{}, e.ExtractMarkup("   \n\t "))
		assert.Equal(t, Result{}, e.ExtractMarkup("<div><span></span></div>"))
	})
}

func TestExtract_MailtoWins(t *testing.T) {
	e := New(DefaultConfig())

	t.Run("over labeled text", func(t *testing.T) {
		r := e.ExtractMarkup(`<p>Email: sales@other.ru</p><p><a href="mailto:info@firm.ru">написать</a></p>`)
		assert.Equal(t, "info@firm.ru", r.Email)
	})

	t.Run("query is dropped", func(t *testing.T) {
		r := e.ExtractMarkup(`<a href="mailto:info@firm.ru?subject=Заявка">Написать нам</a>`)
		assert.Equal(t, "info@firm.ru", r.Email)
	})
}

func TestExtract_DocumentOrder(t *testing.T) {
	e := New(DefaultConfig())

	r := e.ExtractMarkup("Пишите a@first.ru или b@second.ru. Звоните +7 495 111-22-33 или +7 812 444-55-66")
	assert.Equal(t, "a@first.ru", r.Email)
	assert.Equal(t, "+7 495 111-22-33", r.Phone)
}

func TestExtract_LabeledLineBeforeScan(t *testing.T) {
	e := New(DefaultConfig())

	r := e.ExtractMarkup("Для заказов: +7 495 000-00-00\nТелефон: +7 812 111-22-33\nПишите hr@firm.ru\nE-mail: info@firm.ru")
	assert.Equal(t, "+7 812 111-22-33", r.Phone)
	assert.Equal(t, "info@firm.ru", r.Email)
}

func TestExtract_Markers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Markers = Markers{
		Website: ".company_site",
		Phone:   ".company_phone",
		Email:   ".company_email",
	}
	e := New(cfg)

	t.Run("link targets and marker text", func(t *testing.T) {
		r := e.ExtractMarkup(`<div id="tab_contacts_flat">
			<div class="company_site"><a href="http://www.agro.ru/?from=catalog">Перейти на сайт</a></div>
			<div class="company_phone">+7 (3452) 12-34-56</div>
			<div class="company_email"><a href="mailto:sale@agro.ru">Написать</a></div>
			<p>Сайт: other.ru</p>
		</div>`)
		assert.Equal(t, Result{
			Website: "http://www.agro.ru",
			Phone:   "+7 (3452) 12-34-56",
			Email:   "sale@agro.ru",
		}, r)
	})

	t.Run("tel link", func(t *testing.T) {
		r := e.ExtractMarkup(`<span class="company_phone"><a href="tel:+74951234567">позвонить</a></span>`)
		assert.Equal(t, "+74951234567", r.Phone)
	})

	t.Run("missing markers fall back to labels", func(t *testing.T) {
		r := e.ExtractMarkup(`<p>Сайт: firm.ru</p>`)
		assert.Equal(t, "https://firm.ru", r.Website)
	})
}

func TestExtract_ExcludedHosts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = cfg.Rules.With("diveshow.ru")
	e := New(cfg)

	cases := []string{
		"WWW.VK.COM/firm",
		"https://facebook.com/firm",
		"t.me/firm",
		"https://www.diveshow.ru/company/12",
	}
	for _, text := range cases {
		t.Run(text, func(t *testing.T) {
			assert.Empty(t, e.ExtractMarkup(text).Website)
		})
	}

	r := e.ExtractMarkup("diveshow.ru/company/1 и firm.ru")
	assert.Equal(t, "https://firm.ru", r.Website)
}

func TestExtract_ExclusionMatchesWholeLabels(t *testing.T) {
	e := New(DefaultConfig())

	cases := map[string]string{
		"Сайт: www.book.ru":      "https://www.book.ru",
		"Сайт: smart.metal.ru":   "https://smart.metal.ru",
		"Сайт: rostok.ru":        "https://rostok.ru",
		"Сайт: https://m.vk.com": "",
		"Сайт: ok.ru/group/1":    "",
	}
	for text, want := range cases {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, want, e.ExtractMarkup(text).Website)
		})
	}
}

func TestExtract_QueryDoesNotExclude(t *testing.T) {
	e := New(DefaultConfig())
	assert.Equal(t, "https://firm.ru", e.ExtractMarkup("Site: firm.ru/?ref=vk.com").Website)
}

func TestExtract_IgnoresScriptsAndAddresses(t *testing.T) {
	e := New(DefaultConfig())

	r := e.ExtractMarkup(`<script>var x = "spam@bad.ru"</script><p>Тел. 8 800 200-00-00</p><p>Контакт: ivan.petrov@firm.ru</p>`)
	assert.Equal(t, "8 800 200-00-00", r.Phone)
	assert.Equal(t, "ivan.petrov@firm.ru", r.Email)
	assert.Empty(t, r.Website)
}

func TestExtract_Idempotent(t *testing.T) {
	e := New(DefaultConfig())
	b := NewBlock(`<p>Сайт: www.firm.ru</p><p>Тел: +7 (495) 123-45-67</p><p>info@firm.ru</p>`)

	first := e.Extract(b)
	second := e.Extract(b)
	assert.Equal(t, first, second)
	assert.Equal(t, 3, first.Found())
}

func TestExtract_Concurrent(t *testing.T) {
	e := New(DefaultConfig())
	want := e.ExtractMarkup("Сайт: example.com Телефон: +7 (495) 123-45-67")

	var wg sync.WaitGroup
	results := make([]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.ExtractMarkup("Сайт: example.com Телефон: +7 (495) 123-45-67")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, want, r)
	}
}

func TestExtractor_StrategyOrder(t *testing.T) {
	e := New(Config{})
	assert.Equal(t, []string{"marker-link", "mailto", "marker-text", "labeled-line", "scan"}, e.Strategies())
}

func TestNormalizeWebsite(t *testing.T) {
	rules := DefaultRules()

	t.Run("cleans and adds scheme", func(t *testing.T) {
		cases := map[string]string{
			"example.com.":               "https://example.com",
			"(www.firm.ru)":              "https://www.firm.ru",
			"https://firm.ru/?utm=1#top": "https://firm.ru",
			"сайт.рф":                    "https://сайт.рф",
			"http://firm.ru/catalog/":    "http://firm.ru/catalog",
		}
		for in, want := range cases {
			got, ok := NormalizeWebsite(in, rules, "")
			require.True(t, ok, in)
			assert.Equal(t, want, got)

			again, ok := NormalizeWebsite(got, rules, "")
			require.True(t, ok, got)
			assert.Equal(t, got, again)
		}
	})

	t.Run("rejects short and dotless", func(t *testing.T) {
		for _, in := range []string{"a.b", "x.ru", "abcdef", "...", ""} {
			_, ok := NormalizeWebsite(in, rules, "")
			assert.False(t, ok, in)
		}
	})

	t.Run("rejects pseudo protocols", func(t *testing.T) {
		for _, in := range []string{"mailto:info@firm.ru", "javascript:void(0)", "tel:+74951234567"} {
			_, ok := NormalizeWebsite(in, rules, "")
			assert.False(t, ok, in)
		}
	})

	t.Run("email domain exact match", func(t *testing.T) {
		_, ok := NormalizeWebsite("firm.ru", rules, "info@FIRM.ru")
		assert.False(t, ok)

		_, ok = NormalizeWebsite("https://firm.ru/", rules, "info@firm.ru")
		assert.False(t, ok)

		_, ok = NormalizeWebsite("xn--e1afmkfd.xn--p1ai", rules, "info@пример.рф")
		assert.False(t, ok)

		got, ok := NormalizeWebsite("www.firm.ru", rules, "info@firm.ru")
		assert.True(t, ok)
		assert.Equal(t, "https://www.firm.ru", got)
	})

	t.Run("custom scheme", func(t *testing.T) {
		got, ok := NormalizeWebsite("firm.ru", Rules{DefaultScheme: "http://"}, "")
		assert.True(t, ok)
		assert.Equal(t, "http://firm.ru", got)
	})
}

func TestNormalizePhoneAndEmail(t *testing.T) {
	p, ok := NormalizePhone("  +7  (495)\n123-45-67 ")
	assert.True(t, ok)
	assert.Equal(t, "+7 (495) 123-45-67", p)

	_, ok = NormalizePhone(" \t")
	assert.False(t, ok)

	e, ok := NormalizeEmail("MAILTO:info@firm.ru?subject=x")
	assert.True(t, ok)
	assert.Equal(t, "info@firm.ru", e)

	_, ok = NormalizeEmail("mailto:")
	assert.False(t, ok)
}

func TestRules_With(t *testing.T) {
	base := DefaultRules()
	extended := base.With(" skrepkaexpo.ru ", "")

	assert.True(t, extended.Excludes("https://SkrepkaExpo.ru/about"))
	assert.False(t, base.Excludes("https://skrepkaexpo.ru/about"))
	assert.Len(t, extended.Excluded, len(base.Excluded)+1)
}

func TestRules_Excludes(t *testing.T) {
	rules := Rules{Excluded: []string{"tel:", "vk.com", "catalog."}}

	tests := []struct {
		candidate string
		want      bool
	}{
		{"tel:+74951112233", true},
		{"https://vk.com/firm", true},
		{"new.vk.com", true},
		{"http://user@vk.com:8080/x", true},
		{"notvk.com", false},
		{"firm.ru/?ref=vk.com", false},
		{"https://catalog.climatexpo.ru/firm", true},
		{"https://climatexpo.ru/catalog/firm", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rules.Excludes(tt.candidate), tt.candidate)
	}
}

func TestBlock_Lines(t *testing.T) {
	b := NewBlock(`<div><h3>ООО  «Фирма»</h3><p>Адрес:<br>Москва,&nbsp;ул. Ленина, 1</p><table><tr><td>Тел.</td><td>8 800 200-00-00</td></tr></table></div>`)
	assert.Equal(t, []string{
		"ООО «Фирма»",
		"Адрес:",
		"Москва, ул. Ленина, 1",
		"Тел. 8 800 200-00-00",
	}, b.Lines())
	assert.False(t, b.Empty())
}
