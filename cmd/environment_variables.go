package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// DaemonEnvPrefix prefixes env variables that set todod flags.
	DaemonEnvPrefix = "TODOD_"
	// ClientEnvPrefix prefixes env variables that set todo flags.
	ClientEnvPrefix = "TODO_"

	fileSuffix = "_FILE"
)

// SetFlagsFromEnvVariables sets each flag from an env variable whose name is
// the flag name upper-cased, with dashes replaced by underscores, and
// prefixed with prefix, e.g. --basic-auth-password can be set with
// TODOD_BASIC_AUTH_PASSWORD.
//
// Alternatively, the same env variable suffixed with _FILE can be set to the
// path of a file containing the value, e.g. TODOD_BASIC_AUTH_PASSWORD_FILE.
func SetFlagsFromEnvVariables(prefix string, fs *pflag.FlagSet) (err error) {
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		envVar := flagToEnvVarName(prefix, f)
		if val, ok := os.LookupEnv(envVar); ok {
			if setErr := fs.Set(f.Name, val); setErr != nil {
				err = fmt.Errorf("setting %s from %s: %w", f.Name, envVar, setErr)
			}
			return
		}
		if strings.HasSuffix(envVar, fileSuffix) {
			return
		}
		path, ok := os.LookupEnv(envVar + fileSuffix)
		if !ok {
			return
		}
		val, readErr := os.ReadFile(path)
		if readErr != nil {
			err = fmt.Errorf("reading %s: %w", envVar+fileSuffix, readErr)
			return
		}
		if setErr := fs.Set(f.Name, string(val)); setErr != nil {
			err = fmt.Errorf("setting %s from %s: %w", f.Name, envVar+fileSuffix, setErr)
		}
	})
	return err
}

func flagToEnvVarName(prefix string, f *pflag.Flag) string {
	return fmt.Sprintf("%s%s", prefix, strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_"))
}
