package schema

import (
	"strings"
)

// ParseTagSetting splits a tag into upper-cased keys and their values; a bare key maps to
// itself and a separator preceded by `\` is kept inside the value
func ParseTagSetting(str string, sep string) map[string]string {
	settings := map[string]string{}
	names := strings.Split(str, sep)

	for i := 0; i < len(names); i++ {
		j := i
		for len(names[j]) > 0 && names[j][len(names[j])-1] == '\\' && i+1 < len(names) {
			i++
			names[j] = names[j][0:len(names[j])-1] + sep + names[i]
			names[i] = ""
		}

		values := strings.Split(names[j], ":")
		k := strings.TrimSpace(strings.ToUpper(values[0]))

		if len(values) >= 2 {
			settings[k] = strings.Join(values[1:], ":")
		} else if k != "" {
			settings[k] = k
		}
	}

	return settings
}
