package common

import (
	"regexp"

	"github.com/bmritz/grocerymail/logger"
	"github.com/spf13/viper"
)

var patternLog = logger.New()

// Pattern compiles the regular expression configured under key. An unset key
// or an expression that does not compile falls back to def.
func Pattern(key, def string) *regexp.Regexp {
	expr := viper.GetString(key)
	if expr == "" {
		return regexp.MustCompile(def)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		patternLog.Warn().Err(err).Str("key", key).Msg("invalid pattern in config, using default")
		return regexp.MustCompile(def)
	}
	return re
}
