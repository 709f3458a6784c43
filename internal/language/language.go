// Package language holds the fixed set of languages shared by translation,
// synthesis and transcription.
package language

import (
	"fmt"
	"strings"
)

// Language describes one supported language and its per-provider codes.
type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Locale     string `json:"locale"`      // speech-recognition / SSML locale
	GoogleCode string `json:"google_code"` // translate_tts "tl" parameter
	AzureVoice string `json:"azure_voice"`
	Whisper    string `json:"whisper"` // ISO-639-1 for transcription
}

// Default is used wherever a provider needs a language and none matched.
const Default = "en"

var all = []Language{
	{Code: "en", Name: "English", Locale: "en-US", GoogleCode: "en", AzureVoice: "en-US-AriaNeural", Whisper: "en"},
	{Code: "fr", Name: "French", Locale: "fr-FR", GoogleCode: "fr", AzureVoice: "fr-FR-DeniseNeural", Whisper: "fr"},
	{Code: "es", Name: "Spanish", Locale: "es-ES", GoogleCode: "es", AzureVoice: "es-ES-ElviraNeural", Whisper: "es"},
	{Code: "de", Name: "German", Locale: "de-DE", GoogleCode: "de", AzureVoice: "de-DE-KatjaNeural", Whisper: "de"},
	{Code: "it", Name: "Italian", Locale: "it-IT", GoogleCode: "it", AzureVoice: "it-IT-ElsaNeural", Whisper: "it"},
	{Code: "pt", Name: "Portuguese", Locale: "pt-BR", GoogleCode: "pt", AzureVoice: "pt-BR-FranciscaNeural", Whisper: "pt"},
	{Code: "ru", Name: "Russian", Locale: "ru-RU", GoogleCode: "ru", AzureVoice: "ru-RU-SvetlanaNeural", Whisper: "ru"},
	{Code: "ja", Name: "Japanese", Locale: "ja-JP", GoogleCode: "ja", AzureVoice: "ja-JP-NanamiNeural", Whisper: "ja"},
	{Code: "zh-cn", Name: "Chinese (Simplified)", Locale: "zh-CN", GoogleCode: "zh-CN", AzureVoice: "zh-CN-XiaoxiaoNeural", Whisper: "zh"},
	{Code: "ar", Name: "Arabic", Locale: "ar-SA", GoogleCode: "ar", AzureVoice: "ar-SA-ZariyahNeural", Whisper: "ar"},
}

var byCode = func() map[string]Language {
	m := make(map[string]Language, len(all))
	for _, l := range all {
		m[l.Code] = l
	}
	return m
}()

// All returns the supported languages in display order.
func All() []Language {
	out := make([]Language, len(all))
	copy(out, all)
	return out
}

// Lookup finds a language by code, case-insensitively.
func Lookup(code string) (Language, bool) {
	l, ok := byCode[strings.ToLower(strings.TrimSpace(code))]
	return l, ok
}

// MustLookup falls back to English for unknown codes.
func MustLookup(code string) Language {
	if l, ok := Lookup(code); ok {
		return l
	}
	return byCode[Default]
}

// Validate returns an error naming the code when it is not supported.
func Validate(code string) error {
	if _, ok := Lookup(code); !ok {
		return fmt.Errorf("unsupported language %q", code)
	}
	return nil
}
