// Package i18n resolves the display language and prints localized messages.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	ErrInvalidRequest  = "error.invalid_request"
	ErrNetwork         = "error.network"
	ErrInvalidResponse = "error.invalid_response"
	ErrServerStatus    = "error.server_status"
	ErrDecoding        = "error.decoding"
	ErrUnknown         = "error.unknown"
	ErrLoginFailed     = "error.login_failed"

	MsgAnonymous     = "session.anonymous"
	MsgSignedInAs    = "session.signed_in_as"
	MsgNextDraw      = "draw.next"
	MsgDrawAvailable = "draw.available"
	MsgAlreadyDrawn  = "draw.already_drawn"
	MsgLocalDraw     = "draw.local"
	MsgLoggedOut     = "auth.logged_out"
	MsgPassword      = "auth.password_prompt"
	MsgRegClosed     = "auth.registration_closed"
	MsgSaved         = "settings.saved"
	MsgCopied        = "clipboard.copied"
	MsgDrawCount     = "draw.count"
)

// Screen text without a key constant is looked up by its English form, so
// the English catalog only needs the keyed messages above.

var supported = []language.Tag{language.Chinese, language.English}

var matcher = language.NewMatcher(supported)

// Supported returns the languages with a catalog.
func Supported() []language.Tag {
	return supported
}

// Default returns the fallback language.
func Default() language.Tag {
	return language.Chinese
}

// ResolveTag picks the first candidate with a catalog, skipping empty values.
// Profile language should come before the configured default.
func ResolveTag(candidates ...string) language.Tag {
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		tag, err := language.Parse(c)
		if err != nil {
			continue
		}
		_, idx, conf := matcher.Match(tag)
		if conf != language.No {
			return supported[idx]
		}
	}
	return Default()
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// PrinterFor is ResolveTag followed by Printer.
func PrinterFor(candidates ...string) *message.Printer {
	return Printer(ResolveTag(candidates...))
}
