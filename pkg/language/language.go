// Package language maps the configurator's locale codes to the display
// names the addon services use in their language filters.
package language

var names = map[string]string{
	"es-MX": "Latino",
	"es-ES": "Spanish",
	"pt-BR": "Portuguese",
	"pt-PT": "Portuguese",
	"fr":    "French",
	"it":    "Italian",
	"de":    "German",
	"nl":    "Dutch",
	"en":    "English",
}

// Name returns the display name for a locale code, falling back to the
// code itself for unknown locales.
func Name(code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
