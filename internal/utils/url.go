package utils

import (
	"regexp"
	"strings"
)

var propertyURLPattern = regexp.MustCompile(`(?i)^https?://[^ ]+\.(com\.br|gov\.br)(/.*)?$`)

// Mensagens de validação exibidas ao usuário.
const (
	MsgURLSemProtocolo = "A URL deve começar com http:// ou https://"
	MsgURLForaDoPadrao = "Informe uma URL de um site de leilões brasileiro (.com.br ou .gov.br)"
)

// IsValidPropertyURL reports whether url is a syntactically well-formed
// listing URL on an allowed Brazilian domain. No network access is performed.
func IsValidPropertyURL(url string) bool {
	return propertyURLPattern.MatchString(url)
}

// DescribeURLError returns a user-facing validation message for url, or ""
// when there is nothing to show. An empty input returns "" on purpose: an
// untouched field is not yet an error.
func DescribeURLError(url string) string {
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(url), "http") {
		return MsgURLSemProtocolo
	}
	if !propertyURLPattern.MatchString(url) {
		return MsgURLForaDoPadrao
	}
	return ""
}
