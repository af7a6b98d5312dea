package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/ratelimit"

	"github.com/ratlabs/ratl/pkg/classmap"
	"github.com/ratlabs/ratl/pkg/config"
	"github.com/ratlabs/ratl/pkg/expression"
	"github.com/ratlabs/ratl/pkg/logger"
	"github.com/ratlabs/ratl/pkg/notification"
	"github.com/ratlabs/ratl/pkg/paths"
	"github.com/ratlabs/ratl/pkg/probe"
	"github.com/ratlabs/ratl/pkg/reducer"
	"github.com/ratlabs/ratl/pkg/replacer"
	"github.com/ratlabs/ratl/pkg/scanner"
)

var (
	flagConfigFile string
	flagLogFile    string

	flagVerbose        bool
	flagDryRun         bool
	flagRecursive      bool
	flagFollowSymlinks bool
	flagIgnoreOwner    bool
	flagIgnoreGroup    bool
	flagIgnorePerms    bool
	flagIgnoreEmpty    bool
	flagFromFile       string
	flagDebug          int
)

func RootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "ratl [flags] [path...]",
		Short: "Rationalise duplicate files into hard links",
		Long: `Rationalise a set of files by collapsing byte-identical copies into
hard links to a single inode. Directory arguments have their contents
included; with no arguments the current directory is rationalised.
No file is ever lost: a copy is renamed aside before every replacement
and only removed once the new link exists.`,
		SilenceUsage: true,
		RunE:         run,
	}

	command.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print every link performed")
	command.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Print intended links; perform no filesystem mutation (implies --verbose)")
	command.Flags().BoolVarP(&flagRecursive, "recursive", "r", false, "Recurse into subdirectories")
	command.Flags().BoolVarP(&flagFollowSymlinks, "follow-symlinks", "s", false, "Follow symbolic links to files (and to directories with --recursive)")
	command.Flags().BoolVarP(&flagIgnoreOwner, "ignore-owner", "u", false, "Ignore file ownership when grouping")
	command.Flags().BoolVarP(&flagIgnoreGroup, "ignore-group", "g", false, "Ignore group ownership when grouping")
	command.Flags().BoolVarP(&flagIgnorePerms, "ignore-perms", "p", false, "Ignore permission bits when grouping")
	command.Flags().BoolVarP(&flagIgnoreEmpty, "ignore-empty", "z", false, "Skip zero-length files entirely")
	command.Flags().StringVarP(&flagFromFile, "from-file", "f", "", "Read candidate paths from file, one per line (- for stdin)")
	command.Flags().CountVarP(&flagDebug, "debug", "d", "Debug tracing")
	_ = command.Flags().MarkHidden("debug")

	command.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", config.Default(), "Config file")
	command.PersistentFlags().StringVarP(&flagLogFile, "log", "l", "", "Log file")

	command.AddCommand(VersionCommand())
	command.AddCommand(UpdateCommand())

	return command
}

// effectiveConfig merges flag values over config file defaults. A flag
// only overrides when it was set on the command line.
func effectiveConfig(cmd *cobra.Command) config.Configuration {
	cfg := config.Config

	override := func(name string, dst *bool, flag bool) {
		if cmd.Flags().Changed(name) {
			*dst = flag
		}
	}

	override("verbose", &cfg.Verbose, flagVerbose)
	override("dry-run", &cfg.DryRun, flagDryRun)
	override("recursive", &cfg.Recursive, flagRecursive)
	override("follow-symlinks", &cfg.FollowSymlinks, flagFollowSymlinks)
	override("ignore-owner", &cfg.IgnoreOwner, flagIgnoreOwner)
	override("ignore-group", &cfg.IgnoreGroup, flagIgnoreGroup)
	override("ignore-perms", &cfg.IgnorePerms, flagIgnorePerms)
	override("ignore-empty", &cfg.IgnoreEmpty, flagIgnoreEmpty)

	if cfg.DryRun {
		cfg.Verbose = true
	}

	return cfg
}

func run(cmd *cobra.Command, args []string) error {
	start := time.Now()

	if err := config.Init(flagConfigFile); err != nil {
		return err
	}

	if err := logger.Init(flagDebug, flagLogFile); err != nil {
		return err
	}

	log := logger.GetLogger("ratl")
	cfg := effectiveConfig(cmd)

	excludes, err := paths.Compile(cfg.ExcludePaths)
	if err != nil {
		return err
	}

	ignoreExprs, err := expression.Compile(cfg.Filters.Ignore)
	if err != nil {
		return err
	}

	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
	}

	prober := probe.New(probe.Options{
		FollowSymlinks: cfg.FollowSymlinks,
		IgnoreEmpty:    cfg.IgnoreEmpty,
	})

	classes := classmap.New(classmap.IgnoreFlags{
		Owner: cfg.IgnoreOwner,
		Group: cfg.IgnoreGroup,
		Perms: cfg.IgnorePerms,
	})

	sc := scanner.New(prober, classes, scanner.Options{
		Recursive:      cfg.Recursive,
		FollowSymlinks: cfg.FollowSymlinks,
		Excludes:       excludes,
		Ignore:         ignoreExprs,
	})

	if flagFromFile != "" {
		if len(args) > 0 {
			return errors.New("positional paths and --from-file are mutually exclusive")
		}
		if err := sc.ScanListFile(flagFromFile); err != nil {
			return err
		}
	} else {
		if len(args) == 0 {
			args = []string{"."}
		}
		sc.ScanArgs(args)
	}

	log.Debugf("Indexed %d candidates into %d classes", classes.Candidates(), classes.Length())

	rep := replacer.New(cfg.DryRun, cfg.Verbose)
	st := reducer.New(rep, limiter).Reduce(classes)

	log.WithField("reclaimed_space", humanize.IBytes(st.ReclaimedBytes)).
		Infof("Rationalised %d candidates in %d classes: %d linked, %d already linked, %d failures",
			st.Candidates, st.Classes, st.Links, st.AlreadyLinked, st.Transient+st.Catastrophic)

	noti := notification.NewDiscordSender(log, cfg.Notifications)
	if noti.CanSend() {
		fields := make([]notification.Field, 0, len(st.Linked))
		for _, lp := range st.Linked {
			fields = append(fields, noti.BuildField(lp.Target, lp.Source, lp.Size))
		}

		description := fmt.Sprintf("Linked **%d** duplicates | Reclaimed **%s**",
			st.Links, humanize.IBytes(st.ReclaimedBytes))
		if err := noti.Send("Rationalise", description, time.Since(start), fields, cfg.DryRun); err != nil {
			log.WithError(err).Error("Failed sending notification")
		}
	}

	return nil
}
