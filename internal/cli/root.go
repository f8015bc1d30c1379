package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

// Options are the flags shared by every subcommand.
type Options struct {
	configPath  string
	apiURL      string
	sessionDir  string
	shareOrigin string
}

// Execute runs the CLI.
func Execute() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	return newRootCmd(&Options{}).Execute()
}

func newRootCmd(opts *Options) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("GLOBETROTTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "globetrotter",
		Short:   "Guess famous destinations from cryptic clues",
		Version: releaseVersion,
	}

	flags := cmd.PersistentFlags()
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	flags.StringVar(&opts.configPath, "config", "config/config.yaml", "path to YAML config (env: GLOBETROTTER_CONFIG)")
	flags.StringVar(&opts.apiURL, "api-url", "", "backend origin, overrides api.base_url (env: GLOBETROTTER_API_URL)")
	flags.StringVar(&opts.sessionDir, "session-dir", "", "directory for the saved identity (env: GLOBETROTTER_SESSION_DIR)")
	flags.StringVar(&opts.shareOrigin, "share-origin", "", "origin used in challenge links (env: GLOBETROTTER_SHARE_ORIGIN)")

	flags.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = flags.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(
		newLoginCmd(opts),
		newWhoamiCmd(opts),
		newLogoutCmd(opts),
		newPlayCmd(opts),
		newChallengeCmd(opts),
		newShareCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
	)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("globetrotter v{{.Version}}\n")
	cmd.SilenceUsage = true

	return cmd
}
