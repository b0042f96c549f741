package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bbengfort/altvote"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	// Load the .env file if it exists
	godotenv.Load()

	// Instantiate the command line application
	app := cli.NewApp()
	app.Name = "altvote"
	app.Usage = "count ranked ballots with the alternative vote"
	app.Version = altvote.PackageVersion
	app.Before = setupLogging
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "minimum level of log messages (trace, debug, info, warn, error)",
			EnvVars: []string{"ALTVOTE_LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "count",
			Usage:     "count a ballot file round by round and report the winner",
			ArgsUsage: "[ballots.csv]",
			Action:    count,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "candidate",
					Aliases: []string{"c"},
					Usage:   "name of a candidate, in ID order (repeat for each candidate)",
				},
				&cli.Int64Flag{
					Name:    "seed",
					Aliases: []string{"s"},
					Usage:   "random seed for breaking ties between the lowest candidates",
					EnvVars: []string{"ALTVOTE_SEED"},
				},
				&cli.StringFlag{
					Name:    "metrics",
					Aliases: []string{"m"},
					Usage:   "append tally metrics as JSON to this file",
					EnvVars: []string{"ALTVOTE_METRICS"},
				},
				&cli.BoolFlag{
					Name:  "strict",
					Usage: "refuse to count if any ballot in the file is rejected",
				},
			},
		},
		{
			Name:      "validate",
			Usage:     "check a ballot file and report rejected lines",
			ArgsUsage: "[ballots.csv]",
			Action:    validate,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "candidate",
					Aliases: []string{"c"},
					Usage:   "name of a candidate, in ID order (repeat for each candidate)",
				},
			},
		},
		{
			Name:   "config",
			Usage:  "print the resolved configuration",
			Action: config,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

//===========================================================================
// Commands
//===========================================================================

func count(c *cli.Context) (err error) {
	var conf *altvote.Config
	if conf, err = altvote.LoadConfig(options(c)); err != nil {
		return cli.Exit(err, 1)
	}

	if conf.Ballots == "" {
		return cli.Exit("specify a ballot file to count", 1)
	}

	election := altvote.NewElection(rand.New(rand.NewSource(conf.GetSeed())), conf.GetCandidates()...)
	metrics := altvote.NewMetrics()
	election.Register(metrics.Handle)

	var added int
	if added, err = election.LoadVotes(conf.Ballots); err != nil {
		reportLineErrors(err)
		if c.Bool("strict") {
			return cli.Exit("ballot file rejected", 1)
		}
	}
	log.Info().Int("ballots", added).Str("path", conf.Ballots).Msg("ballots loaded")

	// Render each round as the election reports it
	reporter := &reporter{out: os.Stdout}
	election.Register(reporter.Handle)

	if _, err = election.Count(); err != nil && !errors.Is(err, altvote.ErrNoWinner) {
		return cli.Exit(err, 1)
	}

	if conf.Metrics != "" {
		extra := map[string]interface{}{"path": conf.Ballots, "timestamp": time.Now().Format(time.RFC3339)}
		if err := metrics.Dump(conf.Metrics, extra); err != nil {
			return cli.Exit(err, 1)
		}
	}

	log.Debug().Msg(metrics.String())
	return nil
}

func validate(c *cli.Context) (err error) {
	var conf *altvote.Config
	if conf, err = altvote.LoadConfig(options(c)); err != nil {
		return cli.Exit(err, 1)
	}

	if conf.Ballots == "" {
		return cli.Exit("specify a ballot file to validate", 1)
	}

	election := altvote.NewElection(nil, conf.GetCandidates()...)
	added, err := election.LoadVotes(conf.Ballots)
	rejected := reportLineErrors(err)

	fmt.Printf("%d ballots accepted, %d rejected\n", added, rejected)
	if err != nil {
		return cli.Exit("ballot file rejected", 1)
	}
	return nil
}

func config(c *cli.Context) (err error) {
	var conf *altvote.Config
	if conf, err = altvote.LoadConfig(options(c)); err != nil {
		return cli.Exit(err, 1)
	}

	// Show the roster actually used
	conf.Candidates = conf.GetCandidates()

	var data []byte
	if data, err = json.MarshalIndent(conf, "", "  "); err != nil {
		return cli.Exit(err, 1)
	}

	fmt.Println(string(data))
	return nil
}

//===========================================================================
// Helpers
//===========================================================================

// Configures zerolog from the log level flag and the configuration; logs are
// written to stderr so that reports can be piped.
func setupLogging(c *cli.Context) error {
	conf := new(altvote.Config)
	if err := conf.Load(); err != nil {
		return cli.Exit(err, 1)
	}

	if level := c.String("log-level"); level != "" {
		conf.LogLevel = level
	}
	zerolog.SetGlobalLevel(conf.GetLogLevel())

	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}

// Builds configuration options from the command line flags and arguments.
// Flags that were not given are left zero so they do not override the file.
func options(c *cli.Context) *altvote.Config {
	opts := &altvote.Config{
		Ballots: c.Args().First(),
	}

	if c.IsSet("candidate") {
		opts.Candidates = c.StringSlice("candidate")
	}

	if c.IsSet("seed") {
		opts.Seed = c.Int64("seed")
	}

	if c.IsSet("metrics") {
		opts.Metrics = c.String("metrics")
	}

	if c.IsSet("log-level") {
		opts.LogLevel = c.String("log-level")
	}
	return opts
}

// Logs every rejected line in a load error and returns how many there were.
func reportLineErrors(err error) (rejected int) {
	if err == nil {
		return 0
	}

	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	for _, lerr := range errs {
		var line *altvote.LineError
		if errors.As(lerr, &line) {
			log.Warn().Str("path", line.Path).Int("line", line.Line).Err(line.Err).Msg("ballot rejected")
		} else {
			log.Error().Err(lerr).Msg("could not load ballots")
		}
		rejected++
	}
	return rejected
}
