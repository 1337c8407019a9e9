package utils

import "testing"

func TestIsValidPropertyURL(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		valid bool
	}{
		{"https com.br", "https://www.leilaoimovel.com.br/imovel/123", true},
		{"http com.br", "http://leiloes.com.br", true},
		{"gov.br", "https://www.caixa.gov.br/leiloes/imovel/1", true},
		{"uppercase scheme", "HTTPS://WWW.LEILAO.COM.BR/X", true},
		{"root path", "https://leilao.com.br/", true},
		{"empty", "", false},
		{"ftp scheme", "ftp://x.com.br/y", false},
		{"plain com", "https://example.com/imovel", false},
		{"missing scheme", "www.leilao.com.br", false},
		{"space in host", "https://lei lao.com.br", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidPropertyURL(tt.url); got != tt.valid {
				t.Errorf("IsValidPropertyURL(%q) = %v, expected %v", tt.url, got, tt.valid)
			}
		})
	}
}

func TestDescribeURLError(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"empty input is not yet an error", "", ""},
		{"valid url", "https://www.leilaoimovel.com.br/imovel/123", ""},
		{"no protocol", "www.leilao.com.br", MsgURLSemProtocolo},
		{"ftp scheme", "ftp://x.com.br/y", MsgURLSemProtocolo},
		{"wrong domain class", "https://example.com/imovel", MsgURLForaDoPadrao},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeURLError(tt.url); got != tt.want {
				t.Errorf("DescribeURLError(%q) = %q, expected %q", tt.url, got, tt.want)
			}
		})
	}
}

// Inputs that do not start with http must get the protocol message, which is
// distinct from the domain-format message.
func TestDescribeURLErrorNonHTTPNeverDomainMessage(t *testing.T) {
	inputs := []string{"ftp://x.com.br/y", "leilao.com.br", "mailto:a@b.com.br", "x"}

	for _, url := range inputs {
		msg := DescribeURLError(url)
		if msg == "" {
			t.Errorf("DescribeURLError(%q) = \"\", expected a message", url)
		}
		if msg == MsgURLForaDoPadrao {
			t.Errorf("DescribeURLError(%q) returned the domain message, expected the protocol message", url)
		}
	}
}
