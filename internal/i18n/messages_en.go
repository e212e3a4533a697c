package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, ErrInvalidRequest, "Invalid URL.")
	message.SetString(lang, ErrNetwork, "Network request failed: %v")
	message.SetString(lang, ErrInvalidResponse, "Received an invalid server response.")
	message.SetString(lang, ErrServerStatus, "server error, status code: %d")
	message.SetString(lang, ErrDecoding, "Failed to decode data: %v")
	message.SetString(lang, ErrUnknown, "An unknown error occurred.")
	message.SetString(lang, ErrLoginFailed, "login failed")

	message.SetString(lang, MsgAnonymous, "not signed in")
	message.SetString(lang, MsgSignedInAs, "signed in as %s")
	message.SetString(lang, MsgNextDraw, "next draw in %s")
	message.SetString(lang, MsgDrawAvailable, "a draw is available now")
	message.SetString(lang, MsgAlreadyDrawn, "today's fortune: %s")
	message.SetString(lang, MsgLocalDraw, "local draw (not signed in): %s")
	message.SetString(lang, MsgLoggedOut, "logged out")
	message.SetString(lang, MsgPassword, "Password: ")
	message.SetString(lang, MsgRegClosed, "registration is closed")
	message.SetString(lang, MsgSaved, "saved")
	message.SetString(lang, MsgCopied, "copied to clipboard")
	message.Set(lang, MsgDrawCount, plural.Selectf(1, "%d", //nolint:errcheck
		"=1", "%d draw",
		"other", "%d draws",
	))
}
