// ABOUTME: Root command for the hmicap CLI
// ABOUTME: Loads configuration, sets up logging and registers subcommands
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/hmicap/hmicap-go/internal/config"
	"github.com/hmicap/hmicap-go/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configKey annotates flags that override a config key
const configKey = "hmicap_config_key"

// app carries state shared by every command of one invocation
type app struct {
	v       *viper.Viper
	cfg     config.Config
	cfgFile string
	verbose bool
	logFile *os.File
}

func newApp() *app {
	return &app{v: viper.New()}
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	a := newApp()
	defer a.close()

	if err := a.rootCommand().ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hmicap",
		Short: "Convert and play HMICAP and HMICA audio containers",
		Long: `hmicap converts source audio into fully decoded HMICAP (binary) and
HMICA (run-length text) containers, optionally zstd-compressed, and plays
them back with real-time glitch effects.`,
		Version:           version.Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: "+config.DefaultPath()+")")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "also log to stderr")
	pf.String("log-file", "", "log file path")
	bindFlag(pf, "log-file", "log_file")

	root.AddCommand(
		a.playCommand(),
		a.convertCommand(),
		a.infoCommand(),
		a.toneCommand(),
		a.configCommand(),
	)
	return root
}

// bindFlag marks a flag as an override for a config key
func bindFlag(fs *pflag.FlagSet, name, key string) {
	if err := fs.SetAnnotation(name, configKey, []string{key}); err != nil {
		panic(err)
	}
}

// setup resolves the configuration for the running command and opens the log
func (a *app) setup(cmd *cobra.Command, args []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys, ok := f.Annotations[configKey]; ok && bindErr == nil {
			bindErr = a.v.BindPFlag(keys[0], f)
		}
	})
	if bindErr != nil {
		return bindErr
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	return a.setupLogging(cmd.ErrOrStderr())
}

// setupLogging sends the standard logger to the log file, and to console too
// in verbose mode
func (a *app) setupLogging(console io.Writer) error {
	f, err := os.OpenFile(a.cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error opening log file: %w", err)
	}
	a.logFile = f

	if a.verbose {
		log.SetOutput(io.MultiWriter(console, f))
	} else {
		log.SetOutput(f)
	}
	log.Printf("%s %s (%s)", version.Product, version.Version, version.Manufacturer)
	return nil
}

// logToFileOnly keeps log lines off a full-screen UI
func (a *app) logToFileOnly() {
	if a.logFile != nil {
		log.SetOutput(a.logFile)
	}
}

func (a *app) close() {
	if a.logFile != nil {
		log.SetOutput(os.Stderr)
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
