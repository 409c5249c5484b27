package main

import (
	"bufio"
	"errors"
	"os"

	"github.com/9seconds/geoweblog/geolib"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"
)

var version = "dev"

var (
	app = kingpin.New(
		"geoweblog",
		"Geolocation enrichment and analysis of web server logs")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOWEBLOG_DEBUG").
		Bool()
	configPath = app.Flag("config", "Path to the config.").
			Short('c').
			Envar("GEOWEBLOG_CONFIG").
			Required().
			ExistingFile()

	lookupCommand   = app.Command("lookup", "Lookup locations of IP addresses.")
	lookupAddresses = lookupCommand.Arg("address", "IP addresses to lookup.").
			Required().
			Strings()

	enrichCommand = app.Command("enrich", "Add locations to weblog CSV.")
	enrichInput   = enrichCommand.Arg("input", "Path to weblog CSV.").
			Required().
			String()
	enrichOutput = enrichCommand.Flag("output", "Path to the output file. Stdout by default.").
			Short('o').
			String()
	enrichFormat = enrichCommand.Flag("format", "Output format.").
			Default(formatCSV).
			Enum(formatCSV, formatJSONLines)

	reportCommand = app.Command("report", "Analyze weblog CSV.")
	reportInput   = reportCommand.Arg("input", "Path to weblog CSV.").
			Required().
			String()
	reportCountry = reportCommand.Flag("country", "Analyze only requests of this country.").
			String()
	reportTop = reportCommand.Flag("top", "How many groups to show.").
			Default("15").
			Int()
	reportInterval = reportCommand.Flag("interval", "Interval of time series buckets.").
			Default("1h").
			Duration()
	reportWindow = reportCommand.Flag("window", "Moving average window in buckets.").
			Default("24").
			Int()
	reportMeasure = reportCommand.Flag("measure", "Measure of central tendency for moving average.").
			Default("mean").
			Enum("mean", "median")
	reportDeviation = reportCommand.Flag("deviation", "Measure of absolute deviation for moving average bands. Same as measure by default.").
			Enum("mean", "median")
	reportIQRFactor = reportCommand.Flag("iqr-factor", "Multiplier of interquartile range for outliers.").
			Default("1.5").
			Float64()
	reportJSON = reportCommand.Flag("json", "Render report as JSON.").
			Bool()

	serveCommand = app.Command("serve", "Run HTTP API.")

	downloadCommand = app.Command("download", "Download weblog from Splunk saved search.")
	downloadName    = downloadCommand.Arg("name", "Name of output file without extension.").
			String()
	downloadYes = downloadCommand.Flag("yes", "Do not ask for confirmation.").
			Short('y').
			Bool()
	downloadUsername = downloadCommand.Flag("username", "Splunk username.").
				Envar("GEOWEBLOG_SPLUNK_USERNAME").
				String()
	downloadPassword = downloadCommand.Flag("password", "Splunk password.").
				Envar("GEOWEBLOG_SPLUNK_PASSWORD").
				String()
)

func main() {
	app.Version(version)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	log, appLog := newLogger(*debug)

	conf, err := parseConfig(*configPath)
	if err != nil {
		exit(appLog, err)
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	fs := afero.NewOsFs()

	switch command {
	case lookupCommand.FullCommand():
		err = runLookup(ctx, fs, conf, log, os.Stdout)
	case enrichCommand.FullCommand():
		err = runEnrich(ctx, fs, conf, log, appLog)
	case reportCommand.FullCommand():
		err = runReport(ctx, fs, conf, log, appLog)
	case serveCommand.FullCommand():
		err = runServe(ctx, fs, conf, log, appLog)
	case downloadCommand.FullCommand():
		err = runDownload(ctx, fs, conf, bufio.NewReader(os.Stdin), os.Stderr, appLog)
	}

	if err != nil {
		cancel()
		exit(appLog, err)
	}
}

// exit terminates with code 2 if datasets cannot be loaded and 1 for
// other errors.
func exit(appLog zerolog.Logger, err error) {
	code := 1

	if errors.Is(err, geolib.ErrDatasetLoad) {
		code = 2
	}

	appLog.Error().Err(err).Int("exit_code", code).Msg("Cannot continue")
	os.Exit(code)
}
